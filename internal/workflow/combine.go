package workflow

import (
	"fmt"
	"strings"

	"mailsift/internal/mail"
)

// combine folds a batch's messages into one annotated text block for the
// pipeline. Each message gets a header carrying its subject, origin, date,
// and position within its thread so the analysis can attribute content after
// the bodies are merged.
func combine(messages []mail.Message) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== MESSAGE %d ===\n", i+1)
		fmt.Fprintf(&b, "Subject: %s\n", orUnknown(msg.Subject, "No Subject"))
		fmt.Fprintf(&b, "From: %s\n", orUnknown(msg.From, "Unknown"))
		fmt.Fprintf(&b, "Date: %s\n", orUnknown(msg.Date, "Unknown Date"))
		fmt.Fprintf(&b, "Thread: message %d of %d\n", msg.Position, msg.ThreadTotal)
		b.WriteString("\n")
		b.WriteString(msg.Body)
		b.WriteString("\n")
	}
	return b.String()
}

func orUnknown(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
