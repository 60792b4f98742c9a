package vhex

import (
	"fmt"
)

type ParseErrorType uint

const (
	SyntaxError  ParseErrorType = 1 // malformed byte token
	AddressError ParseErrorType = 2 // malformed or empty address directive
)

// ParseError reports a malformed token together with the line it came from.
type ParseError struct {
	Type    ParseErrorType
	Message string
	Line    uint
	Text    string // raw content of the offending line
}

func (e *ParseError) Error() string {
	var str string = "error"
	switch e.Type {
	case SyntaxError:
		str = "syntax error"
	case AddressError:
		str = "address error"
	}
	return fmt.Sprintf("%s: %s at line %d: %q", str, e.Message, e.Line, e.Text)
}

func newParseError(et ParseErrorType, msg string, line uint, text string) error {
	return &ParseError{Type: et, Message: msg, Line: line, Text: text}
}
