// Package calc evaluates delimiter-separated integer lists.
//
// An expression is an optional delimiter header followed by a body of
// integers:
//
//	expression := "" | [ "//" delimiter "\n" ] body
//	body       := token ( separator token )*
//	token      := [ "-" ] digit+
//
// Without a header, commas and newlines both separate numbers. With a
// header, the declared literal separates numbers. A comma in the body is
// then reported as a mixed delimiter, but its neighbors are still summed.
//
// # Basic Usage
//
//	sum, err := calc.Evaluate("1\n2,3") // 6
//
//	sum, err = calc.Evaluate("//sep\n2sep5") // 7
//
// # Errors
//
// Evaluation fails in one of four ways:
//
//   - malformed_header: "//;" with no newline
//   - trailing_separator: "1,2," or "//;\n1;2;"
//   - negative_numbers: "1,-2,3"
//   - mixed_delimiter: "//|\n1|2,3"
//
// The first two are reported alone. The last two are combined, negatives
// first:
//
//	_, err := calc.Evaluate("//|\n1|2,-3")
//	// err.Error() ==
//	//   "Negative number(s) not allowed: -3\n'|' expected but ',' found at position 3."
//
// Use errors.Is with the sentinels in package errors to test for a kind:
//
//	if errors.Is(err, calcerrors.ErrNegativeNumbers) { ... }
//
// # Magnitude Filter
//
// Values above 1000 are left out of the sum without an error. The threshold
// is inclusive and can be changed with WithMaxValue:
//
//	calc.Evaluate("//;\n1;2;1001") // 3
//
// # Concurrency
//
// Evaluation is a pure function of its input. There is no package state, and
// an Evaluator can be shared between goroutines without locking.
package calc
