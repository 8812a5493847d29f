// Package preflight validates external dependencies before the daemon
// accepts work: credential files, the prompt catalog, and model API
// reachability.
package preflight
