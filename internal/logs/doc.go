// Package logs reads the watcher log file for the CLI.
//
// Last returns the final lines of the file together with the byte offset
// they end at; Since and Follow continue from such an offset. A file that
// shrinks below the saved offset (truncated or replaced by retention) is
// read again from the start.
package logs
