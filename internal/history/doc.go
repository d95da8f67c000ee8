// Package history keeps a journal of translation runs in a SQLite database
// so that `polyglot --history` can list what was translated and how it went.
package history
