package mail

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	Date    time.Time
	ID      string
}

// VerificationSubject is the subject line of verification emails.
const VerificationSubject = "Verify your email address"

// NewVerificationMessage builds the email carrying the verification link.
func NewVerificationMessage(from, to, link string) *Message {
	body := strings.Join([]string{
		"Hello,",
		"",
		"Follow this link to verify your email address:",
		"",
		link,
		"",
		"If you didn't ask to verify this address, you can ignore this email.",
		"",
	}, "\r\n")

	return &Message{
		From:    from,
		To:      to,
		Subject: VerificationSubject,
		Body:    body,
	}
}

// Bytes renders the message in RFC 5322 form with CRLF line endings.
func (m *Message) Bytes() []byte {
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	id := m.ID
	if id == "" {
		id = fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(m.From))
	}

	var buf bytes.Buffer
	writeHeader(&buf, "From", m.From)
	writeHeader(&buf, "To", m.To)
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	writeHeader(&buf, "Date", date.Format(time.RFC1123Z))
	writeHeader(&buf, "Message-ID", id)
	writeHeader(&buf, "MIME-Version", "1.0")
	writeHeader(&buf, "Content-Type", "text/plain; charset=utf-8")
	writeHeader(&buf, "Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")
	buf.WriteString(normalizeCRLF(m.Body))
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	// Header injection guard.
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

func normalizeCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func domainOf(addr string) string {
	_, dom := splitAddress(addr)
	if dom == "" {
		return "localhost"
	}
	return dom
}

func splitAddress(addr string) (local, domain string) {
	addr = strings.TrimSpace(addr)
	// Strip angle brackets if present (e.g., <user@domain> -> user@domain)
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		addr = addr[i:]
	}
	addr = strings.TrimSpace(strings.Trim(addr, "<>"))
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return addr[:i], addr[i+1:]
	}
	return addr, ""
}

// bareAddress reduces "Name <local@domain>" to "local@domain", or "" if there is no domain.
func bareAddress(addr string) string {
	local, domain := splitAddress(addr)
	if local == "" || domain == "" {
		return ""
	}
	return local + "@" + domain
}

func domainEquals(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
