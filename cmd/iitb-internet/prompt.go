package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

func stdinPrompt(w io.Writer) (string, error) {
	return promptPassword(w, os.Stdin)
}

// promptPassword reads without echo from a terminal, or the first line of
// in when it is piped.
func promptPassword(w io.Writer, in *os.File) (string, error) {
	fmt.Fprint(w, "Enter password: ")
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return "", errors.Wrap(err, "read password")
		}
		return string(pw), nil
	}
	return readLine(in)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Wrap(err, "read password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
