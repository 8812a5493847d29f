// Package logs provides bounded-memory tailing of the daemon log file.
//
// It backs `mailsift logs`, returning the last N lines of mailsiftd.log and
// optionally following the file for new output. Callers supply context
// deadlines so follow-mode polling shuts down cleanly when the CLI exits.
package logs
