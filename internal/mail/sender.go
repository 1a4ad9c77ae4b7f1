package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/utils"
	"github.com/emersion/go-sasl"
	smtpcore "github.com/emersion/go-smtp"
)

// ErrNoRecipient is returned for messages without a To address.
var ErrNoRecipient = errors.New("mail: no recipient")

// Sender delivers messages to a relay over SMTP.
type Sender struct {
	addr     string
	username string
	password string
	dkim     *DKIMSigner
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithPlainAuth authenticates to the relay with SASL PLAIN.
func WithPlainAuth(username, password string) SenderOption {
	return func(s *Sender) { s.username, s.password = username, password }
}

// WithDKIM signs every outbound message.
func WithDKIM(signer *DKIMSigner) SenderOption {
	return func(s *Sender) { s.dkim = signer }
}

func NewSender(addr string, opts ...SenderOption) *Sender {
	s := &Sender{addr: addr}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send renders, optionally signs and relays msg. The SMTP exchange itself is
// not interruptible; ctx is checked before dialing.
func (s *Sender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rcpt := bareAddress(msg.To)
	if rcpt == "" {
		return ErrNoRecipient
	}

	start := time.Now()
	data := msg.Bytes()
	if s.dkim != nil {
		signed, err := s.dkim.Sign(data)
		if err != nil {
			return err
		}
		data = signed
	}

	var auth sasl.Client
	if s.username != "" {
		auth = sasl.NewPlainClient("", s.username, s.password)
	}

	if err := smtpcore.SendMail(s.addr, auth, bareAddress(msg.From), []string{rcpt}, bytes.NewReader(data)); err != nil {
		logging.WarnLog("Mail send failed [%s] via %s: %v", utils.HashEmail(rcpt), s.addr, err)
		return fmt.Errorf("send mail: %w", err)
	}

	logging.InfoLog("Mail sent [%s] %v", utils.HashEmail(rcpt), time.Since(start))
	return nil
}
