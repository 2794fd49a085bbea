package mail

import (
	"bytes"
	"fmt"
	"io"
	netmail "net/mail"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// Message is a rendered email ready for delivery.
type Message struct {
	From    *netmail.Address
	To      []*netmail.Address
	Subject string
	Text    string
	HTML    string
	Date    time.Time
}

// Recipients returns the bare addresses of the message recipients.
func (m *Message) Recipients() []string {
	out := make([]string, len(m.To))
	for i, a := range m.To {
		out[i] = a.Address
	}
	return out
}

// Bytes encodes m as a multipart/alternative MIME message.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo encodes m as a multipart/alternative MIME message into w.
func (m *Message) WriteTo(w io.Writer) error {
	if m.From == nil {
		return fmt.Errorf("message has no sender")
	}
	if len(m.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	var h gomail.Header
	h.SetDate(m.Date)
	h.SetSubject(m.Subject)
	h.SetAddressList("From", []*gomail.Address{m.From})
	h.SetAddressList("To", m.To)
	if err := h.GenerateMessageID(); err != nil {
		return fmt.Errorf("failed to generate message id: %w", err)
	}

	mw, err := gomail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("failed to create mail writer: %w", err)
	}
	iw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("failed to create inline writer: %w", err)
	}

	if err := writePart(iw, "text/plain", m.Text); err != nil {
		return err
	}
	if m.HTML != "" {
		if err := writePart(iw, "text/html", m.HTML); err != nil {
			return err
		}
	}

	if err := iw.Close(); err != nil {
		return fmt.Errorf("failed to close inline writer: %w", err)
	}
	return mw.Close()
}

func writePart(iw *gomail.InlineWriter, contentType, body string) error {
	var ph gomail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	pw, err := iw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(pw, body); err != nil {
		_ = pw.Close()
		return fmt.Errorf("failed to write %s part: %w", contentType, err)
	}
	return pw.Close()
}
