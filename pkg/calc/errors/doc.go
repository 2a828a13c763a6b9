// Package errors provides the issue types reported when an expression cannot
// be evaluated.
//
// # Issue Types
//
// IssueTypeMalformedHeader: "//" marker with no newline after the delimiter
//
// IssueTypeTrailingSeparator: body ends with the active separator
//
// IssueTypeNegativeNumbers: one or more values below zero
//
// IssueTypeMixedDelimiter: a comma appears where a custom delimiter is declared
//
// The first two are fatal and always reported alone. The last two are
// collected into an IssueList, negatives first, and reported together.
//
// # Basic Usage
//
//	issues := errors.NewIssueList()
//	issues.Add(errors.NewNegativeNumbers(negatives))
//	issues.Add(mixed)
//	return issues.ToError()
//
// Every IssueType is also an error value, so callers can test for a kind
// without unpacking the list:
//
//	if errors.Is(err, calcerrors.ErrNegativeNumbers) { ... }
//
// # Error Format
//
// Error returns the bare messages joined by newlines:
//
//	Negative number(s) not allowed: -3
//	'|' expected but ',' found at position 3.
//
// Detail adds the location, a caret excerpt of the body and a suggestion:
//
//	[mixed_delimiter] '|' expected but ',' found at position 3.
//	  --> position 3
//	  |
//	-> 1 | 1|2,-3
//	     |    ^
//	  |
//	  = suggestion: Replace ',' with '|'
package errors
