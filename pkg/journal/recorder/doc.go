// Package recorder writes journal records in the background.
//
// Record fills in the record ID, timestamp, expression hash and size,
// truncates long expressions and hands the record to a buffered channel. A
// single worker drains the channel into storage. Close drains whatever is
// still buffered before returning.
package recorder
