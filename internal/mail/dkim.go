package mail

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/emersion/go-msgauth/dkim"
)

type DKIMResult int

const (
	DKIMNone DKIMResult = iota
	DKIMPass
	DKIMFail
	DKIMTempError
)

func (r DKIMResult) String() string {
	switch r {
	case DKIMNone:
		return "none"
	case DKIMPass:
		return "pass"
	case DKIMFail:
		return "fail"
	case DKIMTempError:
		return "temperror"
	default:
		return "unknown"
	}
}

var signedHeaders = []string{"From", "To", "Subject", "Date", "Message-ID", "MIME-Version", "Content-Type"}

// DKIMSigner signs outbound messages for one domain/selector.
type DKIMSigner struct {
	domain   string
	selector string
	signer   crypto.Signer
}

func NewDKIMSigner(domain, selector string, signer crypto.Signer) *DKIMSigner {
	return &DKIMSigner{domain: domain, selector: selector, signer: signer}
}

// Sign returns msg with a DKIM-Signature header prepended.
func (s *DKIMSigner) Sign(msg []byte) ([]byte, error) {
	var out bytes.Buffer
	err := dkim.Sign(&out, bytes.NewReader(msg), &dkim.SignOptions{
		Domain:                 s.domain,
		Selector:               s.selector,
		Signer:                 s.signer,
		HeaderCanonicalization: dkim.CanonicalizationRelaxed,
		BodyCanonicalization:   dkim.CanonicalizationRelaxed,
		HeaderKeys:             signedHeaders,
	})
	if err != nil {
		return nil, fmt.Errorf("dkim sign: %w", err)
	}
	return out.Bytes(), nil
}

// TXTRecord returns the DNS TXT value publishing the signer's public key.
func (s *DKIMSigner) TXTRecord() (string, error) {
	return DKIMTXTRecord(s.signer.Public())
}

// RecordName is the DNS name the TXT record lives at.
func (s *DKIMSigner) RecordName() string {
	return s.selector + "._domainkey." + s.domain
}

// DKIMTXTRecord formats an Ed25519 public key as a DKIM key record.
func DKIMTXTRecord(pub crypto.PublicKey) (string, error) {
	edPub, ok := pub.(ed25519.PublicKey)
	if !ok {
		return "", fmt.Errorf("dkim: unsupported key type %T", pub)
	}
	return "v=DKIM1; k=ed25519; p=" + base64.StdEncoding.EncodeToString(edPub), nil
}

// StaticLookup answers DKIM key queries from a fixed map of name -> TXT value.
func StaticLookup(records map[string]string) func(domain string) ([]string, error) {
	byName := make(map[string]string, len(records))
	for name, txt := range records {
		byName[strings.ToLower(strings.TrimSuffix(name, "."))] = txt
	}
	return func(domain string) ([]string, error) {
		if txt, ok := byName[strings.ToLower(strings.TrimSuffix(domain, "."))]; ok {
			return []string{txt}, nil
		}
		return nil, fmt.Errorf("dkim: no key record for %s", domain)
	}
}

// DKIMChecker verifies DKIM signatures on received messages.
// using the emersion/go-msgauth library.
type DKIMChecker struct {
	lookupTXT func(domain string) ([]string, error)
}

// NewDKIMChecker creates a checker. A nil lookup uses DNS.
func NewDKIMChecker(lookupTXT func(domain string) ([]string, error)) *DKIMChecker {
	return &DKIMChecker{lookupTXT: lookupTXT}
}

// CheckDKIM performs DKIM verification on the email message.
// messageData should contain the full email including headers and body.
func (d *DKIMChecker) CheckDKIM(ctx context.Context, messageData []byte) (DKIMResult, error) {
	if err := ctx.Err(); err != nil {
		return DKIMTempError, err
	}

	verifications, err := dkim.VerifyWithOptions(bytes.NewReader(messageData), &dkim.VerifyOptions{
		LookupTXT: d.lookupTXT,
	})
	if err != nil {
		logging.WarnLog("DKIM check error: %v", err)
		return DKIMTempError, err
	}

	if len(verifications) == 0 {
		logging.DebugLog("DKIM check: no DKIM signatures found")
		return DKIMNone, nil
	}

	// At least one valid signature is a pass
	var lastErr error
	for _, verification := range verifications {
		if verification.Err == nil {
			logging.DebugLog("DKIM check: valid signature found for domain=%s", verification.Domain)
			return DKIMPass, nil
		}
		lastErr = verification.Err
		logging.DebugLog("DKIM check: signature verification failed for domain=%s: %v",
			verification.Domain, verification.Err)
	}

	if dkim.IsTempFail(lastErr) {
		return DKIMTempError, lastErr
	}
	logging.WarnLog("DKIM check: all signatures failed, last error: %v", lastErr)
	return DKIMFail, lastErr
}

// readMessageData reads the complete message data from an io.Reader.
func readMessageData(r io.Reader, maxBytes int64) ([]byte, error) {
	buf := new(bytes.Buffer)
	_, err := io.Copy(buf, io.LimitReader(r, maxBytes))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
