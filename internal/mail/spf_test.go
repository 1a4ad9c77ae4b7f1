package mail_test

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/Goofygiraffe06/signup/internal/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// txtResolver serves TXT records from a map and reports every other name as missing.
type txtResolver map[string]string

func notFound(name string) error {
	return &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func (r txtResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	if txt, ok := r[strings.TrimSuffix(name, ".")]; ok {
		return []string{txt}, nil
	}
	return nil, notFound(name)
}

func (r txtResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	return nil, notFound(name)
}

func (r txtResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	return nil, notFound(host)
}

func (r txtResolver) LookupAddr(_ context.Context, addr string) ([]string, error) {
	return nil, notFound(addr)
}

func TestCheckSPF(t *testing.T) {
	checker := mail.NewSPFChecker(mail.WithSPFResolver(txtResolver{
		"example.test": "v=spf1 ip4:192.0.2.10 -all",
		"broken.test":  "v=spf1 bogus:mechanism -all",
	}))
	ctx := context.Background()

	tests := []struct {
		name   string
		ip     string
		sender string
		want   mail.SPFResult
	}{
		{"authorized host", "192.0.2.10", "noreply@example.test", mail.SPFPass},
		{"unauthorized host", "192.0.2.99", "noreply@example.test", mail.SPFFail},
		{"no record", "192.0.2.10", "noreply@norecord.test", mail.SPFNone},
		{"malformed record", "192.0.2.10", "noreply@broken.test", mail.SPFPermError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := checker.CheckSPF(ctx, tt.ip, "mx.example.test", tt.sender)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestCheckSPFInvalidIP(t *testing.T) {
	got, err := mail.NewSPFChecker().CheckSPF(context.Background(), "not-an-ip", "mx.example.test", "noreply@example.test")
	require.Error(t, err)
	assert.Equal(t, mail.SPFPermError, got)
	assert.Equal(t, "permerror", got.String())
}
