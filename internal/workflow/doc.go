// Package workflow drives email analysis tasks end to end: fetch threads,
// rerank by true recency, split into batches, and push each batch through the
// denoise, analyze, and structure stages. Batch failures are isolated; a task
// completes even when individual batches fail.
package workflow
