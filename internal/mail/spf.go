package mail

import (
	"context"
	"fmt"
	"net"

	"blitiri.com.ar/go/spf"
	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/utils"
)

// SPFResult represents the result of an SPF check.
type SPFResult int

const (
	SPFNone SPFResult = iota
	SPFNeutral
	SPFPass
	SPFFail
	SPFSoftFail
	SPFTempError
	SPFPermError
)

func (r SPFResult) String() string {
	switch r {
	case SPFNone:
		return "none"
	case SPFNeutral:
		return "neutral"
	case SPFPass:
		return "pass"
	case SPFFail:
		return "fail"
	case SPFSoftFail:
		return "softfail"
	case SPFTempError:
		return "temperror"
	case SPFPermError:
		return "permerror"
	default:
		return "unknown"
	}
}

var spfResults = map[spf.Result]SPFResult{
	spf.Pass:      SPFPass,
	spf.Fail:      SPFFail,
	spf.SoftFail:  SPFSoftFail,
	spf.Neutral:   SPFNeutral,
	spf.None:      SPFNone,
	spf.TempError: SPFTempError,
	spf.PermError: SPFPermError,
}

// SPFChecker checks whether a connecting host may send for the envelope sender,
// using the blitiri.com.ar/go/spf library.
type SPFChecker struct {
	resolver spf.DNSResolver
}

// SPFOption configures an SPFChecker.
type SPFOption func(*SPFChecker)

// WithSPFResolver answers SPF DNS queries from r instead of the system resolver.
func WithSPFResolver(r spf.DNSResolver) SPFOption {
	return func(s *SPFChecker) { s.resolver = r }
}

// NewSPFChecker creates a new SPF checker.
func NewSPFChecker(opts ...SPFOption) *SPFChecker {
	s := &SPFChecker{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SPFChecker) CheckSPF(ctx context.Context, senderIP, helo, senderEmail string) (SPFResult, error) {
	ip := net.ParseIP(senderIP)
	if ip == nil {
		logging.DebugLog("SPF check: invalid IP address: %s", senderIP)
		return SPFPermError, fmt.Errorf("spf: invalid sender ip %q", senderIP)
	}

	opts := []spf.Option{spf.WithContext(ctx)}
	if s.resolver != nil {
		opts = append(opts, spf.WithResolver(s.resolver))
	}
	result, err := spf.CheckHostWithSender(ip, helo, senderEmail, opts...)

	spfResult, ok := spfResults[result]
	if !ok {
		spfResult = SPFNone
	}

	if err != nil {
		logging.WarnLog("SPF check error for sender=[%s] ip=%s: %v", utils.HashEmail(senderEmail), senderIP, err)
		return spfResult, err
	}

	logging.DebugLog("SPF check result=%s for sender=[%s] ip=%s", spfResult, utils.HashEmail(senderEmail), senderIP)
	return spfResult, nil
}
