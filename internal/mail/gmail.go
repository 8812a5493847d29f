package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mailsift/internal/config"
	"mailsift/internal/logging"
	"mailsift/internal/services"
)

// GmailSource fetches conversation threads through the Gmail API. Tokens are
// expected to exist already; interactive authorization is handled outside the
// daemon.
type GmailSource struct {
	svc    *gmail.Service
	logger *slog.Logger
}

// NewGmailSource builds a Gmail-backed source from stored OAuth credentials.
func NewGmailSource(ctx context.Context, cfg config.Gmail, logger *slog.Logger) (*GmailSource, error) {
	client, err := oauthClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gmail", "new service", "", err)
	}
	return &GmailSource{
		svc:    svc,
		logger: logging.NewComponentLogger(logger, "gmail"),
	}, nil
}

func oauthClient(ctx context.Context, cfg config.Gmail) (*http.Client, error) {
	secrets, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gmail", "read credentials", cfg.CredentialsFile, err)
	}
	oauthCfg, err := google.ConfigFromJSON(secrets, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gmail", "parse credentials", "", err)
	}
	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gmail", "read token", "run the authorization flow first", err)
	}
	return oauthCfg.Client(ctx, token), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(file).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return token, nil
}

// Fetch returns individual messages from up to maxThreads threads matching the
// sender address, flattened in source thread order. Threads that fail to load
// are skipped; a failing list call fails the fetch.
func (s *GmailSource) Fetch(ctx context.Context, senderEmail string, maxThreads int) ([]Message, error) {
	senderEmail = strings.TrimSpace(senderEmail)
	if senderEmail == "" {
		return nil, services.Wrap(services.ErrValidation, "gmail", "fetch", "sender email required", nil)
	}
	if maxThreads <= 0 {
		return nil, services.Wrap(services.ErrValidation, "gmail", "fetch", "max threads must be positive", nil)
	}

	query := "from:" + senderEmail
	listed, err := s.svc.Users.Threads.List("me").Q(query).MaxResults(int64(maxThreads)).Context(ctx).Do()
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "gmail", "threads.list", query, err)
	}
	if len(listed.Threads) == 0 {
		s.logger.Info("no threads matched sender", logging.String("query", query))
		return nil, nil
	}

	messages := make([]Message, 0, len(listed.Threads))
	for _, ref := range listed.Threads {
		detail, err := s.svc.Users.Threads.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			s.logger.Warn("thread fetch failed",
				logging.String("thread_id", ref.Id),
				logging.Error(err),
				logging.String(logging.FieldEventType, "thread_fetch_failed"),
			)
			continue
		}
		messages = append(messages, flattenThread(detail)...)
	}
	s.logger.Info("fetched messages",
		logging.Int("threads", len(listed.Threads)),
		logging.Int("messages", len(messages)),
	)
	return messages, nil
}

func flattenThread(thread *gmail.Thread) []Message {
	if thread == nil || len(thread.Messages) == 0 {
		return nil
	}
	subject := headerValue(thread.Messages[0].Payload, "Subject")
	if subject == "" {
		subject = "No Subject"
	}

	total := len(thread.Messages)
	out := make([]Message, 0, total)
	for i, msg := range thread.Messages {
		out = append(out, Message{
			ThreadID:    thread.Id,
			Position:    i + 1,
			ThreadTotal: total,
			Subject:     subject,
			From:        headerValue(msg.Payload, "From"),
			Date:        headerValue(msg.Payload, "Date"),
			Body:        extractBody(msg.Payload),
		})
	}
	return out
}

func headerValue(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, header := range payload.Headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

// extractBody walks a message payload preferring HTML parts (for hyperlink
// preservation) over plain text, mirroring the part structure Gmail produces
// for multipart messages.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" && len(payload.Parts) == 0 {
		text, err := DecodeBody(payload.Body.Data, headerValue(payload, "Content-Type"))
		if err != nil {
			return ""
		}
		if strings.EqualFold(payload.MimeType, "text/html") {
			return HTMLToText(text)
		}
		return strings.TrimSpace(text)
	}

	var plain string
	for _, part := range payload.Parts {
		switch {
		case strings.EqualFold(part.MimeType, "text/html") && part.Body != nil && part.Body.Data != "":
			text, err := DecodeBody(part.Body.Data, headerValue(part, "Content-Type"))
			if err == nil {
				return HTMLToText(text)
			}
		case strings.EqualFold(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "":
			if text, err := DecodeBody(part.Body.Data, headerValue(part, "Content-Type")); err == nil {
				plain = strings.TrimSpace(text)
			}
		case strings.HasPrefix(strings.ToLower(part.MimeType), "multipart/"):
			if nested := extractBody(part); nested != "" {
				return nested
			}
		}
	}
	return plain
}
