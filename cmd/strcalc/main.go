// strcalc evaluates delimiter-separated integer-list expressions.
//
// An expression is a list of integers separated by commas or newlines, or by
// a custom delimiter declared in a "//<delimiter>\n" header. Negative values
// are rejected and values above the configured maximum are ignored.
//
// Usage:
//
//	# Evaluate one expression
//	strcalc eval '1,2,3'
//
//	# Evaluate from stdin with a stage report
//	printf '//;\n1;2' | strcalc eval --explain
//
//	# Check a file of expressions, one per line
//	strcalc lint --file expressions.txt
//
//	# Run expected-result cases
//	strcalc test --suite cases.yaml
//
//	# Serve the HTTP API
//	strcalc serve --config strcalc.yaml
//
//	# Inspect recorded evaluations
//	strcalc journal query --outcome rejected
package main

func main() {
	Execute()
}
