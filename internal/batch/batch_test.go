package batch_test

import (
	"fmt"
	"reflect"
	"testing"

	"mailsift/internal/batch"
	"mailsift/internal/mail"
)

func sequence(n int) []mail.Message {
	out := make([]mail.Message, n)
	for i := range out {
		out[i] = mail.Message{ThreadID: fmt.Sprintf("t%d", i), Position: 1}
	}
	return out
}

func TestSplitRepartitionLaw(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5, 10} {
		for _, n := range []int{0, 1, 4, 5, 6, 17} {
			input := sequence(n)
			batches, err := batch.Split(input, size)
			if err != nil {
				t.Fatalf("Split(n=%d, size=%d): %v", n, size, err)
			}
			var rejoined []mail.Message
			for _, b := range batches {
				if len(b) == 0 {
					t.Fatalf("Split(n=%d, size=%d) produced empty batch", n, size)
				}
				if len(b) > size {
					t.Fatalf("Split(n=%d, size=%d) produced oversized batch of %d", n, size, len(b))
				}
				rejoined = append(rejoined, b...)
			}
			if n == 0 {
				if batches != nil {
					t.Fatalf("Split(empty) = %v, want nil", batches)
				}
				continue
			}
			if !reflect.DeepEqual(rejoined, input) {
				t.Fatalf("Split(n=%d, size=%d) does not rejoin to input", n, size)
			}
		}
	}
}

func TestSplitFinalBatchShorter(t *testing.T) {
	batches, err := batch.Split(sequence(7), 3)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if len(batches[2]) != 1 {
		t.Fatalf("final batch has %d items, want 1", len(batches[2]))
	}
}

func TestSplitRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := batch.Split(sequence(3), size); err == nil {
			t.Fatalf("Split(size=%d) succeeded, want error", size)
		}
	}
}
