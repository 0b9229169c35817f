package domain

import (
	"errors"
	"unicode/utf8"
)

const MaxSessionCodeLen = 64

var (
	ErrSessionCodeEmpty   = errors.New("session code empty")
	ErrSessionCodeTooLong = errors.New("session code too long")
)

// SessionCode is the opaque, client-chosen key of a session.
type SessionCode string

func (c SessionCode) Validate() error {
	if len(c) == 0 {
		return ErrSessionCodeEmpty
	}
	if utf8.RuneCountInString(string(c)) > MaxSessionCodeLen {
		return ErrSessionCodeTooLong
	}
	return nil
}
