// Package ast defines the data model shared by the expression parser and
// validator.
//
// An Expression is produced by the parser from the raw input string. It
// carries the resolved DelimiterSpec, the body (everything after the optional
// "//<literal>\n" header) and the ordered Tokens found in that body. The
// validator turns tokens into ParsedNumbers and reports problems at a
// Position inside the body.
//
// All offsets and positions are relative to the body, never to the header.
package ast
