package mail_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/Goofygiraffe06/signup/internal/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSink(t *testing.T, opts ...mail.SinkOption) *mail.Sink {
	t.Helper()
	sink := mail.NewSink("127.0.0.1:0", "example.test", 1<<20, opts...)
	require.NoError(t, sink.Start())
	t.Cleanup(sink.Stop)
	return sink
}

func waitMessage(t *testing.T, sink *mail.Sink) mail.Received {
	t.Helper()
	select {
	case msg := <-sink.Received():
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for captured mail")
	}
	return mail.Received{}
}

func TestSenderDeliversToSink(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer := mail.NewDKIMSigner("example.test", "s1", priv)
	txt, err := signer.TXTRecord()
	require.NoError(t, err)

	sink := startSink(t, mail.WithSinkDKIM(mail.NewDKIMChecker(mail.StaticLookup(map[string]string{
		signer.RecordName(): txt,
	}))))
	sender := mail.NewSender(sink.Addr(), mail.WithDKIM(signer))

	link := "http://localhost:8080/verify?token=aaa.bbb.ccc"
	msg := mail.NewVerificationMessage("Signup <noreply@example.test>", "jane@example.test", link)
	require.NoError(t, sender.Send(context.Background(), msg))

	got := waitMessage(t, sink)
	assert.Equal(t, "noreply@example.test", got.From)
	assert.Equal(t, []string{"jane@example.test"}, got.Recipients)
	assert.Equal(t, link, got.Link)
	assert.Equal(t, mail.DKIMPass, got.DKIM)
	assert.Len(t, sink.Messages(), 1)
}

func TestSinkRejectsForeignDomain(t *testing.T) {
	sink := startSink(t)
	sender := mail.NewSender(sink.Addr())

	msg := mail.NewVerificationMessage("noreply@example.test", "jane@elsewhere.test", "link")
	assert.Error(t, sender.Send(context.Background(), msg))
	assert.Empty(t, sink.Messages())
}

func TestSenderValidation(t *testing.T) {
	sender := mail.NewSender("127.0.0.1:1")

	err := sender.Send(context.Background(), &mail.Message{From: "a@example.test", To: "nobody"})
	assert.ErrorIs(t, err, mail.ErrNoRecipient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = sender.Send(ctx, mail.NewVerificationMessage("a@example.test", "b@example.test", "l"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLinkDigestHidesToken(t *testing.T) {
	link := "https://app.example.test/verify?token=eyJhbGciOiJFZERTQSJ9.payload.sig"
	digest := mail.LinkDigest(link)
	assert.NotContains(t, digest, "eyJ")
	assert.Len(t, digest, 8)
	assert.Equal(t, digest, mail.LinkDigest(link))
	assert.Equal(t, "none", mail.LinkDigest(""))
}
