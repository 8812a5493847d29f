// Package main hosts the mailsift CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon API: starting analysis runs, inspecting task
// progress and batch results, listing configured senders, forcing eviction
// sweeps, and configuration scaffolding. It centralizes configuration
// resolution and daemon address discovery so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the heavy lifting lives in
// reusable workflow components.
package main
