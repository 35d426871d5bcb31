package parser

import "fmt"

// ParseError reports a malformed JSON-shape rule expression: an unknown
// operator, a wrong argument count, or a structurally invalid node. Path
// names the offending location using the same dotted-segment notation as
// variable references, rooted at the expression being parsed.
type ParseError struct {
	Path    string
	Message string
}

func (e ParseError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func errAt(path, format string, args ...any) ParseError {
	return ParseError{Path: path, Message: fmt.Sprintf(format, args...)}
}
