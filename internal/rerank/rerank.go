package rerank

import (
	netmail "net/mail"
	"sort"
	"time"

	"mailsift/internal/mail"
)

// conversation collects one thread's messages plus its computed recency.
type conversation struct {
	latest   time.Time
	messages []mail.Message
}

// ByRecency reorders a flat message sequence so conversations appear by true
// latest activity rather than the source's match-date ordering, keeps at most
// limit conversations, and flattens back to messages ordered by their position
// within each thread.
//
// A thread's recency is the latest parseable date among all its messages.
// Unparseable dates are skipped; a thread with no parseable dates at all gets
// the zero instant and sorts behind every dated thread. Ties keep source
// arrival order.
func ByRecency(messages []mail.Message, limit int) []mail.Message {
	if len(messages) == 0 || limit <= 0 {
		return nil
	}

	byThread := make(map[string]*conversation)
	order := make([]*conversation, 0)
	for _, msg := range messages {
		conv, ok := byThread[msg.ThreadID]
		if !ok {
			conv = &conversation{}
			byThread[msg.ThreadID] = conv
			order = append(order, conv)
		}
		conv.messages = append(conv.messages, msg)
		if parsed, err := netmail.ParseDate(msg.Date); err == nil && parsed.After(conv.latest) {
			conv.latest = parsed
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].latest.After(order[j].latest)
	})
	if len(order) > limit {
		order = order[:limit]
	}

	out := make([]mail.Message, 0, len(messages))
	for _, conv := range order {
		sort.SliceStable(conv.messages, func(i, j int) bool {
			return conv.messages[i].Position < conv.messages[j].Position
		})
		out = append(out, conv.messages...)
	}
	return out
}

// OverfetchLimit computes how many conversations to request from the source so
// the reranker has enough material to correct the ordering.
func OverfetchLimit(requested, multiplier, ceiling int) int {
	if requested <= 0 {
		return 0
	}
	if multiplier <= 0 {
		multiplier = 1
	}
	n := requested * multiplier
	if ceiling > 0 && n > ceiling {
		n = ceiling
	}
	if n < requested {
		n = requested
	}
	return n
}
