// Package processor contains the core translation workflow.
//
// Processor is the language driver: for every requested language it walks
// the source document, schedules the translatable leaves on a bounded
// worker pool and assembles the translated document, recording partial
// failures instead of aborting. Runner wraps a Processor for the command
// line: it reads input documents, writes one file per language plus an
// errors.json report, and journals each run in the history database.
package processor
