// Package rerank corrects the mail source's conversation ordering. The source
// ranks threads by the date of the message that matched the search filter, so
// a thread revived by a later reply from another participant appears stale.
// Reranking recomputes each thread's latest activity from every message it
// contains and reorders accordingly.
package rerank
