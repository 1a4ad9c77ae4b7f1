package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"sync"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/manager"
	"github.com/Goofygiraffe06/signup/internal/utils"
	smtpcore "github.com/emersion/go-smtp"
)

var verifyLinkRe = regexp.MustCompile(`https?://[^\s]+/verify\?token=[A-Za-z0-9._\-]+`)

// Received is a message captured by the sink.
type Received struct {
	From       string
	Recipients []string
	Data       []byte
	DKIM       DKIMResult
	SPF        SPFResult
	Link       string
	At         time.Time
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithSinkDKIM verifies signatures of captured messages.
func WithSinkDKIM(c *DKIMChecker) SinkOption { return func(s *Sink) { s.dkim = c } }

// WithSinkSPF checks the connecting host against the sender's SPF policy.
func WithSinkSPF(c *SPFChecker) SinkOption { return func(s *Sink) { s.spf = c } }

// Sink is a development SMTP server that swallows mail for one domain and
// logs the verification links it finds.
type Sink struct {
	server *smtpcore.Server
	ln     net.Listener
	domain string
	dkim   *DKIMChecker
	spf    *SPFChecker

	mu       sync.Mutex
	messages []Received
	notify   chan Received
}

const (
	sinkKeep        = 100
	sinkCheckBudget = 3 * time.Second
)

// NewSink builds a sink listening on addr for mail addressed to domain.
func NewSink(addr, domain string, maxMessageBytes int64, opts ...SinkOption) *Sink {
	s := &Sink{
		domain: domain,
		notify: make(chan Received, 16),
	}
	for _, opt := range opts {
		opt(s)
	}

	srv := smtpcore.NewServer(&sinkBackend{sink: s})
	srv.Addr = addr
	srv.Domain = domain
	srv.ReadTimeout = 5 * time.Second
	srv.WriteTimeout = 5 * time.Second
	srv.MaxMessageBytes = maxMessageBytes
	srv.MaxRecipients = 10
	srv.AllowInsecureAuth = false
	s.server = srv
	return s
}

// Start begins listening in a separate goroutine.
func (s *Sink) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("smtp sink listen failed: %w", err)
	}
	s.ln = ln
	go func() {
		logging.InfoLog("SMTP sink listening on %s (domain=%s)", ln.Addr(), s.domain)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, smtpcore.ErrServerClosed) {
			logging.ErrorLog("SMTP sink stopped: %v", err)
		}
	}()
	return nil
}

// Addr is the bound listen address; valid after Start.
func (s *Sink) Addr() string {
	if s.ln == nil {
		return s.server.Addr
	}
	return s.ln.Addr().String()
}

// Stop shuts the server down.
func (s *Sink) Stop() {
	if s == nil {
		return
	}
	_ = s.server.Close()
}

// Messages returns the most recent captured messages, oldest first.
func (s *Sink) Messages() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Received, len(s.messages))
	copy(out, s.messages)
	return out
}

// Received delivers each captured message once, if the reader keeps up.
func (s *Sink) Received() <-chan Received {
	return s.notify
}

func (s *Sink) record(msg Received) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	if len(s.messages) > sinkKeep {
		s.messages = s.messages[len(s.messages)-sinkKeep:]
	}
	s.mu.Unlock()

	select {
	case s.notify <- msg:
	default:
	}
}

// LinkDigest identifies a captured verification link in logs without
// revealing the token. Empty when no link was found.
func LinkDigest(link string) string {
	if link == "" {
		return "none"
	}
	return utils.HashToken(link)
}

func (s *Sink) inspect(remoteIP, helo, from string, rcpts []string, data []byte) Received {
	msg := Received{
		From:       from,
		Recipients: rcpts,
		Data:       data,
		Link:       verifyLinkRe.FindString(string(data)),
		At:         time.Now(),
	}

	if s.dkim != nil {
		res := make(chan DKIMResult, 1)
		if manager.RunWithTimeout(context.Background(), sinkCheckBudget, func(ctx context.Context) {
			r, _ := s.dkim.CheckDKIM(ctx, data)
			res <- r
		}) {
			msg.DKIM = <-res
		} else {
			msg.DKIM = DKIMTempError
		}
	}
	if s.spf != nil && remoteIP != "" {
		res := make(chan SPFResult, 1)
		if manager.RunWithTimeout(context.Background(), sinkCheckBudget, func(ctx context.Context) {
			r, _ := s.spf.CheckSPF(ctx, remoteIP, helo, from)
			res <- r
		}) {
			msg.SPF = <-res
		} else {
			msg.SPF = SPFTempError
		}
	}
	return msg
}

type sinkBackend struct {
	sink *Sink
}

func (b *sinkBackend) NewSession(c *smtpcore.Conn) (smtpcore.Session, error) {
	sess := &sinkSession{sink: b.sink, helo: c.Hostname()}
	if tcp, ok := c.Conn().RemoteAddr().(*net.TCPAddr); ok {
		sess.remoteIP = tcp.IP.String()
	}
	return sess, nil
}

type sinkSession struct {
	sink       *Sink
	remoteIP   string
	helo       string
	from       string
	recipients []string
}

func (s *sinkSession) Reset() {
	s.from = ""
	s.recipients = s.recipients[:0]
}

func (s *sinkSession) Logout() error { return nil }

func (s *sinkSession) Mail(from string, _ *smtpcore.MailOptions) error {
	s.from = from
	return nil
}

func (s *sinkSession) Rcpt(to string, _ *smtpcore.RcptOptions) error {
	_, dom := splitAddress(to)
	if !domainEquals(dom, s.sink.domain) && s.sink.domain != "" {
		return &smtpcore.SMTPError{Code: 550, EnhancedCode: smtpcore.EnhancedCode{5, 1, 1}, Message: "mailbox unavailable"}
	}
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *sinkSession) Data(r io.Reader) error {
	data, err := readMessageData(r, s.sink.server.MaxMessageBytes)
	if err != nil {
		return err
	}

	rcpts := append([]string(nil), s.recipients...)
	msg := s.sink.inspect(s.remoteIP, s.helo, s.from, rcpts, data)
	s.sink.record(msg)

	for _, rcpt := range rcpts {
		logging.InfoLog("SMTP sink captured mail [%s] dkim=%s spf=%s link=%s",
			utils.HashEmail(rcpt), msg.DKIM, msg.SPF, LinkDigest(msg.Link))
	}
	return nil
}
