// Package api defines the JSON payload types shared by the daemon's HTTP
// server and the CLI client.
package api
