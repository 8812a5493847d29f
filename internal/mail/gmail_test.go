package mail

import (
	"encoding/base64"
	"strings"
	"testing"

	"google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestFlattenThread(t *testing.T) {
	thread := &gmail.Thread{
		Id: "t1",
		Messages: []*gmail.Message{
			{
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Headers: []*gmail.MessagePartHeader{
						{Name: "Subject", Value: "Weekly digest"},
						{Name: "From", Value: "digest@example.com"},
						{Name: "Date", Value: "Mon, 02 Jan 2006 15:04:05 -0700"},
					},
					Body: &gmail.MessagePartBody{Data: b64("first body")},
				},
			},
			{
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Headers: []*gmail.MessagePartHeader{
						{Name: "From", Value: "reply@example.com"},
						{Name: "Date", Value: "Tue, 03 Jan 2006 10:00:00 -0700"},
					},
					Body: &gmail.MessagePartBody{Data: b64("second body")},
				},
			},
		},
	}

	messages := flattenThread(thread)
	if len(messages) != 2 {
		t.Fatalf("flattenThread returned %d messages, want 2", len(messages))
	}
	for i, msg := range messages {
		if msg.ThreadID != "t1" {
			t.Errorf("message %d thread id = %q", i, msg.ThreadID)
		}
		if msg.Subject != "Weekly digest" {
			t.Errorf("message %d subject = %q, want thread subject", i, msg.Subject)
		}
		if msg.Position != i+1 {
			t.Errorf("message %d position = %d", i, msg.Position)
		}
		if msg.ThreadTotal != 2 {
			t.Errorf("message %d thread total = %d", i, msg.ThreadTotal)
		}
	}
	if messages[0].Body != "first body" || messages[1].Body != "second body" {
		t.Fatalf("bodies = %q, %q", messages[0].Body, messages[1].Body)
	}
	if messages[1].From != "reply@example.com" {
		t.Fatalf("second message from = %q", messages[1].From)
	}
}

func TestFlattenThreadMissingSubject(t *testing.T) {
	thread := &gmail.Thread{
		Id: "t2",
		Messages: []*gmail.Message{
			{Payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: b64("body")},
			}},
		},
	}
	messages := flattenThread(thread)
	if len(messages) != 1 || messages[0].Subject != "No Subject" {
		t.Fatalf("flattenThread = %+v, want No Subject placeholder", messages)
	}
}

func TestExtractBodyPrefersHTML(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: b64("plain version")},
			},
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: b64(`<a href="https://example.com">link</a>`)},
			},
		},
	}
	got := extractBody(payload)
	if !strings.Contains(got, "link (https://example.com)") {
		t.Fatalf("extractBody = %q, want HTML part with inlined link", got)
	}
}

func TestExtractBodyPlainFallback(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: b64("only the plain part")},
			},
		},
	}
	if got := extractBody(payload); got != "only the plain part" {
		t.Fatalf("extractBody = %q", got)
	}
}

func TestExtractBodyNestedMultipart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/html",
						Body:     &gmail.MessagePartBody{Data: b64("<p>nested html</p>")},
					},
				},
			},
		},
	}
	if got := extractBody(payload); got != "nested html" {
		t.Fatalf("extractBody = %q", got)
	}
}

func TestExtractBodySinglePart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: b64("  trimmed  ")},
	}
	if got := extractBody(payload); got != "trimmed" {
		t.Fatalf("extractBody = %q", got)
	}
}
