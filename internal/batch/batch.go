// Package batch partitions reranked message sequences into the contiguous
// fixed-size chunks the pipeline processes one at a time.
package batch

import (
	"mailsift/internal/mail"
	"mailsift/internal/services"
)

// Split partitions messages into contiguous batches of at most size items,
// preserving input order. The final batch may be shorter. A non-positive size
// is a caller bug and fails immediately.
func Split(messages []mail.Message, size int) ([][]mail.Message, error) {
	if size <= 0 {
		return nil, services.Wrap(services.ErrValidation, "batch", "split", "batch size must be positive", nil)
	}
	if len(messages) == 0 {
		return nil, nil
	}
	batches := make([][]mail.Message, 0, (len(messages)+size-1)/size)
	for start := 0; start < len(messages); start += size {
		end := start + size
		if end > len(messages) {
			end = len(messages)
		}
		batches = append(batches, messages[start:end])
	}
	return batches, nil
}
