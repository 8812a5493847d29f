package mail

import (
	"encoding/base64"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

var (
	anchorPattern = regexp.MustCompile(`(?is)<a[^>]+href=["'](.*?)["'][^>]*>(.*?)</a>`)
	tagPattern    = regexp.MustCompile(`(?s)<.*?>`)
	spacePattern  = regexp.MustCompile(`[ \t]+`)
	blankPattern  = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText converts HTML content to plain text while inlining hyperlinks as
// "text (url)". Anchors without visible text keep just the URL.
func HTMLToText(html string) string {
	text := anchorPattern.ReplaceAllStringFunc(html, func(match string) string {
		groups := anchorPattern.FindStringSubmatch(match)
		if groups == nil {
			return match
		}
		url := strings.TrimSpace(groups[1])
		label := strings.TrimSpace(tagPattern.ReplaceAllString(groups[2], ""))
		if label == "" {
			return url
		}
		return label + " (" + url + ")"
	})

	text = tagPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	text = blankPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// DecodeBody decodes a base64url message part body, converting declared
// non-UTF-8 charsets when the content type names one. Unknown charsets fall
// back to the raw bytes rather than failing the message.
func DecodeBody(data, contentType string) (string, error) {
	raw, err := decodeBase64URL(data)
	if err != nil {
		return "", err
	}
	charset := charsetFromContentType(contentType)
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "us-ascii") {
		return string(raw), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(raw), nil
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw), nil
	}
	return string(decoded), nil
}

func decodeBase64URL(data string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return raw, nil
	}
	return base64.URLEncoding.DecodeString(data)
}

func charsetFromContentType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
