// Package output persists translated documents and the error report of a
// run.
package output
