package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Goofygiraffe06/signup/api"
	"github.com/Goofygiraffe06/signup/internal/auth"
	"github.com/Goofygiraffe06/signup/internal/config"
	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/mail"
	"github.com/Goofygiraffe06/signup/internal/manager"
	"github.com/Goofygiraffe06/signup/internal/provider"
	"github.com/Goofygiraffe06/signup/internal/provider/identitytoolkit"
	"github.com/Goofygiraffe06/signup/internal/provider/local"
	"github.com/Goofygiraffe06/signup/internal/utils"
	"github.com/Goofygiraffe06/signup/store"
	"github.com/Goofygiraffe06/signup/store/ephemeral"
)

func main() {
	f, err := logging.InitLogger(config.LogFile())
	if err != nil {
		// Nothing to log to yet.
		panic("Failed to initialize logger: " + err.Error())
	}
	defer f.Close()
	defer logging.Sync()

	logging.InfoLog("Starting signup server (provider=%s)", config.Provider())

	var (
		p        provider.Provider
		verifier api.Verifier
		cleanup  []func()
		signer   *mail.DKIMSigner
	)

	switch config.Provider() {
	case config.ProviderIdentityToolkit:
		p = identitytoolkit.New(config.IdentityEndpoint(), config.IdentityAPIKey(), config.IdentityTimeout())
		logging.InfoLog("Using hosted identity endpoint %s", config.IdentityEndpoint())

	case config.ProviderLocal:
		if err := auth.InitSigningKey(config.VerifyKeyFile()); err != nil {
			logging.FatalLog("Failed to initialize signing key: %v", err)
		}

		dbFile := config.DBPath()
		accounts, err := store.NewSQLiteStore(dbFile)
		if err != nil {
			logging.FatalLog("Failed to connect to DB: %v", err)
		}
		if err := os.Chmod(dbFile, 0600); err != nil {
			logging.ErrorLog("Failed to set restrictive permissions on %s: %v", dbFile, err)
		}
		logging.InfoLog("Connected to SQLite database: %s", dbFile)

		pending := ephemeral.NewTTLStore()
		workers := manager.NewWorkManager(
			manager.WithDBWorkers(config.DBWorkerCount()),
			manager.WithCryptoWorkers(config.CryptoWorkerCount()),
			manager.WithMailWorkers(config.MailWorkerCount()),
			manager.WithQueueSize(config.WorkerQueueSize()),
		)

		var senderOpts []mail.SenderOption
		if user := config.MailUsername(); user != "" {
			senderOpts = append(senderOpts, mail.WithPlainAuth(user, config.MailPassword()))
		}
		if keyFile := config.MailDKIMKeyFile(); keyFile != "" {
			key, err := auth.LoadKeyFile(keyFile)
			if err != nil {
				logging.FatalLog("Failed to load DKIM key: %v", err)
			}
			signer = mail.NewDKIMSigner(config.MailDomain(), config.MailDKIMSelector(), key.PrivateKey)
			senderOpts = append(senderOpts, mail.WithDKIM(signer))
			logging.InfoLog("DKIM signing enabled (%s)", signer.RecordName())
		}

		lp := local.New(local.Config{
			Accounts: accounts,
			Pending:  pending,
			Workers:  workers,
			Mailer:   mail.NewSender(config.MailSMTPAddr(), senderOpts...),
			Tokens:   auth.NewIssuer(nil, config.VerifyIssuer(), config.VerifyExpiresIn()),
			From:     config.MailFrom(),
			BaseURL:  config.BaseURL(),
		})
		p, verifier = lp, lp

		cleanup = append(cleanup, workers.Close, pending.Close, func() {
			if err := accounts.Close(); err != nil {
				logging.ErrorLog("Failed to close DB: %v", err)
			}
		})

	default:
		logging.FatalLog("Unknown provider %q", config.Provider())
	}

	if addr := config.MailSinkAddr(); addr != "" {
		sink := startSink(addr, signer)
		cleanup = append([]func(){sink.Stop}, cleanup...)
	}

	srv := &http.Server{
		Addr: ":" + config.Port(),
		Handler: api.NewRouter(api.RouterConfig{
			Provider:       p,
			Verifier:       verifier,
			LoginURL:       config.LoginURL(),
			AllowedOrigins: config.CORSAllowedOrigins(),
			MaxBodyBytes:   config.MaxRequestBodyBytes(),
		}),
		ReadTimeout:       config.ServerReadTimeout(),
		ReadHeaderTimeout: config.ServerReadHeaderTimeout(),
		WriteTimeout:      config.ServerWriteTimeout(),
		IdleTimeout:       config.ServerIdleTimeout(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.InfoLog("Signup server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.FatalLog("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logging.InfoLog("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLog("Graceful shutdown failed: %v", err)
	}
	for _, fn := range cleanup {
		fn()
	}
}

// startSink runs the development mail sink. Messages signed by our own key
// verify against its public record without DNS.
func startSink(addr string, signer *mail.DKIMSigner) *mail.Sink {
	var opts []mail.SinkOption
	if signer != nil {
		record, err := signer.TXTRecord()
		if err != nil {
			logging.FatalLog("Failed to build DKIM record: %v", err)
		}
		lookup := mail.StaticLookup(map[string]string{signer.RecordName(): record})
		opts = append(opts, mail.WithSinkDKIM(mail.NewDKIMChecker(lookup)))
	}
	if config.MailSinkCheckSPF() {
		opts = append(opts, mail.WithSinkSPF(mail.NewSPFChecker()))
	}

	sink := mail.NewSink(addr, config.MailDomain(), config.MailMaxMessageBytes(), opts...)
	if err := sink.Start(); err != nil {
		logging.FatalLog("Failed to start mail sink: %v", err)
	}

	go func() {
		for msg := range sink.Received() {
			logging.InfoLog("Sink captured mail for %d recipient(s) from %s dkim=%s spf=%s link=%s",
				len(msg.Recipients), utils.HashEmail(msg.From), msg.DKIM, msg.SPF, mail.LinkDigest(msg.Link))
		}
	}()
	return sink
}
