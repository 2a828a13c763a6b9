// Package validator checks tokenized expressions and computes their sum.
//
// Two independent passes read the same expression:
//
//   - DetectMixedDelimiter scans the body character by character. Each
//     character is classified by ClassifyAt into a CharClass. The first
//     comma found under a custom delimiter is reported.
//   - Classifier.Classify parses tokens into numbers. It collects negatives
//     and excludes values above the configured maximum (1000 by default)
//     from the sum.
//
// Aggregate joins both results into one *errors.IssueList in a fixed
// order: negative_numbers first, then mixed_delimiter.
//
// Tokens that are not integers are dropped without an issue of their own.
// Callers must not assume that every malformed token is reported.
package validator
