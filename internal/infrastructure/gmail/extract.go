package gmail

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message/charset"
	"google.golang.org/api/gmail/v1"

	"jobtracker/internal/domain/email"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// ExtractEmail builds a domain email from a message fetched with format=full.
// Decoding problems never fail extraction; the affected text is left empty or
// carries replacement characters.
func ExtractEmail(msg *gmail.Message) *email.Email {
	payload := msg.Payload
	if payload == nil {
		payload = &gmail.MessagePart{}
	}

	return email.NewEmail(
		msg.Id,
		extractHeader(payload, "Date"),
		extractHeader(payload, "From"),
		extractHeader(payload, "Subject"),
		extractBody(payload),
		msg.Snippet,
	)
}

func extractHeader(part *gmail.MessagePart, name string) string {
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func extractBody(payload *gmail.MessagePart) string {
	if len(payload.Parts) == 0 {
		text := decodePart(payload)
		if isMimeType(payload, mimeTextHTML) {
			return htmlToText(text)
		}
		return text
	}

	if p := findPart(payload.Parts, mimeTextPlain); p != nil {
		if text := decodePart(p); text != "" {
			return text
		}
	}

	if p := findPart(payload.Parts, mimeTextHTML); p != nil {
		return htmlToText(decodePart(p))
	}

	return ""
}

// findPart returns the first part of the given type that carries data,
// searching nested multipart containers depth-first.
func findPart(parts []*gmail.MessagePart, mimeType string) *gmail.MessagePart {
	for _, p := range parts {
		if p == nil {
			continue
		}
		if isMimeType(p, mimeType) && p.Body != nil && p.Body.Data != "" {
			return p
		}
		if len(p.Parts) > 0 {
			if found := findPart(p.Parts, mimeType); found != nil {
				return found
			}
		}
	}
	return nil
}

func isMimeType(p *gmail.MessagePart, mimeType string) bool {
	return strings.EqualFold(p.MimeType, mimeType)
}

func decodePart(p *gmail.MessagePart) string {
	if p.Body == nil || p.Body.Data == "" {
		return ""
	}

	raw, ok := decodeBase64(p.Body.Data)
	if !ok {
		return ""
	}

	return decodeCharset(raw, partCharset(p))
}

// decodeBase64 accepts base64url with or without padding and falls back to
// standard base64.
func decodeBase64(data string) ([]byte, bool) {
	trimmed := strings.TrimRight(strings.TrimSpace(data), "=")

	if b, err := base64.RawURLEncoding.DecodeString(trimmed); err == nil {
		return b, true
	}
	if b, err := base64.RawStdEncoding.DecodeString(trimmed); err == nil {
		return b, true
	}
	return nil, false
}

func partCharset(p *gmail.MessagePart) string {
	ct := extractHeader(p, "Content-Type")
	if ct == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

func decodeCharset(raw []byte, label string) string {
	switch label {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}

	r, err := charset.Reader(label, bytes.NewReader(raw))
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
}
