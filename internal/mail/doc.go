// Package mail fetches conversation threads from Gmail and flattens them into
// plain-text messages suitable for analysis. HTML bodies are converted to text
// with hyperlinks preserved inline.
package mail
