// Package llm provides the chat completion client used by the analysis
// pipeline, plus the best-effort markdown-to-JSON structurer. Any
// OpenAI-compatible chat completions endpoint works; requests are issued once
// and never retried, failures are recorded by the caller.
package llm
