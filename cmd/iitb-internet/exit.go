package main

import "iitb-internet/internal/model"

type exitCode int

const (
	exitSuccess exitCode = iota
	exitFailure
	exitBadInvocation
	exitConnectionFailed
	exitBadResponse
	exitUnknownError
)

func codeFor(err error) exitCode {
	switch model.KindOf(err) {
	case model.KindNone:
		return exitSuccess
	case model.KindConnection:
		return exitConnectionFailed
	case model.KindBadResponse:
		return exitBadResponse
	default:
		return exitUnknownError
	}
}
