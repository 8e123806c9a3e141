package model

import "github.com/pkg/errors"

var (
	// ErrConnection covers transport failures and non-200 responses.
	ErrConnection = errors.New("connection failed")
	// ErrMalformedData is returned when a response body cannot be used.
	ErrMalformedData = errors.New("malformed data")
	// ErrScrapeMismatch means the page did not match the expected template.
	// It is a kind of ErrMalformedData.
	ErrScrapeMismatch = errors.Wrap(ErrMalformedData, "page template mismatch")
)

type Kind int

const (
	KindNone Kind = iota
	KindConnection
	KindBadResponse
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConnection:
		return "connection"
	case KindBadResponse:
		return "bad response"
	default:
		return "unknown"
	}
}

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConnection):
		return KindConnection
	case errors.Is(err, ErrMalformedData):
		return KindBadResponse
	default:
		return KindUnknown
	}
}
