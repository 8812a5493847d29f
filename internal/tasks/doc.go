// Package tasks holds the in-memory task registry tracking analysis runs.
// Tasks move from processing to a terminal completed or failed state, collect
// one result record per batch along the way, and are evicted by age.
package tasks
