package parsers

import "fmt"

// ParseError reports a Rust source file that is not valid syntax.
type ParseError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
}

// SampleParseError reports a `rust` code block in a specification document
// that is not valid syntax. Block is the 0-based index of the block among the
// document's rust blocks; Line is the document line of the error.
type SampleParseError struct {
	Document string
	Block    int
	Line     int
	Msg      string
}

func (e *SampleParseError) Error() string {
	return fmt.Sprintf("%s: code block %d (line %d): %s", e.Document, e.Block, e.Line, e.Msg)
}
