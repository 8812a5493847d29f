package mail

// Message is one retrieved message within a conversation thread. Bodies carry
// hyperlinks inlined as "text (url)" so downstream analysis keeps them.
type Message struct {
	// ThreadID groups messages belonging to one conversation.
	ThreadID string
	// Position is the 1-based position of this message within its thread.
	Position int
	// ThreadTotal is the number of messages in the thread at fetch time.
	ThreadTotal int
	// Subject is inherited from the thread's first message.
	Subject string
	// From is the originating address of this message.
	From string
	// Date is the raw RFC 5322 date header; parsing is deferred to the
	// reranker, which tolerates malformed values.
	Date string
	// Body is the extracted message text.
	Body string
}

// ThreadCount returns the number of distinct threads among the messages.
func ThreadCount(messages []Message) int {
	seen := make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		seen[msg.ThreadID] = struct{}{}
	}
	return len(seen)
}
