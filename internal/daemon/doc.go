// Package daemon runs the mailsift background service: it owns the task
// store, launches one worker goroutine per accepted analysis run, sweeps
// expired tasks on a timer, and serves the HTTP API the CLI talks to. A file
// lock enforces a single instance per machine.
package daemon
