package rerank_test

import (
	"fmt"
	"reflect"
	"testing"

	"mailsift/internal/mail"
	"mailsift/internal/rerank"
)

func msg(thread string, position, total int, date string) mail.Message {
	return mail.Message{
		ThreadID:    thread,
		Position:    position,
		ThreadTotal: total,
		Subject:     "subject " + thread,
		Date:        date,
	}
}

func threadOrder(messages []mail.Message) []string {
	var order []string
	for _, m := range messages {
		if len(order) == 0 || order[len(order)-1] != m.ThreadID {
			order = append(order, m.ThreadID)
		}
	}
	return order
}

func TestByRecencyReordersByLatestReply(t *testing.T) {
	// Thread "old" matched the filter recently but its last activity is
	// older than thread "busy", which got a later reply from someone else.
	input := []mail.Message{
		msg("old", 1, 1, "Mon, 05 Jan 2026 09:00:00 +0000"),
		msg("busy", 1, 2, "Fri, 02 Jan 2026 09:00:00 +0000"),
		msg("busy", 2, 2, "Tue, 06 Jan 2026 18:30:00 +0000"),
	}

	got := rerank.ByRecency(input, 5)
	want := []string{"busy", "old"}
	if !reflect.DeepEqual(threadOrder(got), want) {
		t.Fatalf("thread order = %v, want %v", threadOrder(got), want)
	}
}

func TestByRecencyIdempotent(t *testing.T) {
	input := []mail.Message{
		msg("a", 1, 1, "Wed, 07 Jan 2026 12:00:00 +0000"),
		msg("b", 1, 1, "Tue, 06 Jan 2026 12:00:00 +0000"),
		msg("c", 1, 1, "Mon, 05 Jan 2026 12:00:00 +0000"),
	}
	once := rerank.ByRecency(input, 3)
	twice := rerank.ByRecency(once, 3)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("reranking is not idempotent:\nonce  = %v\ntwice = %v", once, twice)
	}
}

func TestByRecencySkipsUnparseableDates(t *testing.T) {
	input := []mail.Message{
		msg("mixed", 1, 2, "not a date at all"),
		msg("mixed", 2, 2, "Thu, 08 Jan 2026 08:00:00 +0000"),
		msg("plain", 1, 1, "Wed, 07 Jan 2026 08:00:00 +0000"),
	}
	got := rerank.ByRecency(input, 2)
	want := []string{"mixed", "plain"}
	if !reflect.DeepEqual(threadOrder(got), want) {
		t.Fatalf("thread order = %v, want %v", threadOrder(got), want)
	}
}

func TestByRecencyUndatedThreadSortsLast(t *testing.T) {
	input := []mail.Message{
		msg("undated", 1, 1, "garbage"),
		msg("dated", 1, 1, "Thu, 08 Jan 2026 08:00:00 +0000"),
	}
	got := rerank.ByRecency(input, 2)
	want := []string{"dated", "undated"}
	if !reflect.DeepEqual(threadOrder(got), want) {
		t.Fatalf("thread order = %v, want %v", threadOrder(got), want)
	}
}

func TestByRecencyTruncatesToLimit(t *testing.T) {
	var input []mail.Message
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("t%d", i)
		date := fmt.Sprintf("%02d Jan 2026 10:00:00 +0000", i+1)
		input = append(input, msg(id, 1, 1, date))
	}
	got := rerank.ByRecency(input, 3)
	want := []string{"t6", "t5", "t4"}
	if !reflect.DeepEqual(threadOrder(got), want) {
		t.Fatalf("thread order = %v, want %v", threadOrder(got), want)
	}
}

func TestByRecencyStableTieBreak(t *testing.T) {
	same := "Thu, 08 Jan 2026 08:00:00 +0000"
	input := []mail.Message{
		msg("first", 1, 1, same),
		msg("second", 1, 1, same),
		msg("third", 1, 1, same),
	}
	got := rerank.ByRecency(input, 3)
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(threadOrder(got), want) {
		t.Fatalf("thread order = %v, want %v", threadOrder(got), want)
	}
}

func TestByRecencyFlattensByPosition(t *testing.T) {
	// Arrival order within the flat input differs from thread position.
	input := []mail.Message{
		msg("t", 2, 3, "Tue, 06 Jan 2026 12:00:00 +0000"),
		msg("t", 3, 3, "Wed, 07 Jan 2026 12:00:00 +0000"),
		msg("t", 1, 3, "Mon, 05 Jan 2026 12:00:00 +0000"),
	}
	got := rerank.ByRecency(input, 1)
	if len(got) != 3 {
		t.Fatalf("got %d messages, want 3", len(got))
	}
	for i, m := range got {
		if m.Position != i+1 {
			t.Fatalf("position at index %d = %d, want %d", i, m.Position, i+1)
		}
	}
}

func TestByRecencyEmptyAndZeroLimit(t *testing.T) {
	if got := rerank.ByRecency(nil, 3); got != nil {
		t.Fatalf("ByRecency(nil) = %v, want nil", got)
	}
	input := []mail.Message{msg("t", 1, 1, "Mon, 05 Jan 2026 12:00:00 +0000")}
	if got := rerank.ByRecency(input, 0); got != nil {
		t.Fatalf("ByRecency(limit=0) = %v, want nil", got)
	}
}

func TestOverfetchLimit(t *testing.T) {
	cases := []struct {
		requested, multiplier, ceiling, want int
	}{
		{3, 3, 100, 9},
		{50, 3, 100, 100},
		{40, 3, 100, 100},
		{0, 3, 100, 0},
		{5, 0, 100, 5},
		{10, 3, 0, 30},
	}
	for _, tc := range cases {
		if got := rerank.OverfetchLimit(tc.requested, tc.multiplier, tc.ceiling); got != tc.want {
			t.Errorf("OverfetchLimit(%d, %d, %d) = %d, want %d",
				tc.requested, tc.multiplier, tc.ceiling, got, tc.want)
		}
	}
}
