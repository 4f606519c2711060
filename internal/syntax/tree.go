package syntax

import "deprecheck/internal/source"

// ParseError is a region the front-end could not parse. Missing marks a
// token the parser inserted to recover.
type ParseError struct {
	Span    source.Span
	Message string
	Missing bool
}

// Tree is a parsed file.
type Tree struct {
	File   *source.File
	Root   Node
	Errors []ParseError
}
