package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/Goofygiraffe06/signup/internal/config"
	"github.com/Goofygiraffe06/signup/internal/workerpool"
)

// WorkManager provides separate pools for DB, password hashing and mail work
// so slow SQLite writes, bcrypt and SMTP round trips never share a queue.
type WorkManager struct {
	db     *workerpool.Pool
	crypto *workerpool.Pool
	mail   *workerpool.Pool
}

// Option configures the WorkManager.
type Option func(*options)

type options struct {
	dbWorkers     int
	cryptoWorkers int
	mailWorkers   int
	queueSize     int
}

// WithDBWorkers sets the DB worker count.
func WithDBWorkers(n int) Option { return func(o *options) { o.dbWorkers = n } }

// WithCryptoWorkers sets the crypto worker count.
func WithCryptoWorkers(n int) Option { return func(o *options) { o.cryptoWorkers = n } }

// WithMailWorkers sets the mail worker count.
func WithMailWorkers(n int) Option { return func(o *options) { o.mailWorkers = n } }

// WithQueueSize sets the shared queue size (per pool).
func WithQueueSize(n int) Option { return func(o *options) { o.queueSize = n } }

// NewWorkManager constructs the manager with the given options (or defaults from config).
func NewWorkManager(opts ...Option) *WorkManager {
	o := &options{
		dbWorkers:     config.DBWorkerCount(),
		cryptoWorkers: config.CryptoWorkerCount(),
		mailWorkers:   config.MailWorkerCount(),
		queueSize:     config.WorkerQueueSize(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &WorkManager{
		db:     workerpool.New("db", o.dbWorkers, o.queueSize),
		crypto: workerpool.New("crypto", o.cryptoWorkers, o.queueSize),
		mail:   workerpool.New("mail", o.mailWorkers, o.queueSize),
	}
}

// Close shuts down all pools.
func (m *WorkManager) Close() {
	if m == nil {
		return
	}
	m.db.Close()
	m.crypto.Close()
	m.mail.Close()
}

// DoDB runs fn on the DB pool and waits for its result.
func (m *WorkManager) DoDB(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	return do(ctx, m.db, d, fn)
}

// DoCrypto runs fn on the crypto pool and waits for its result.
func (m *WorkManager) DoCrypto(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	return do(ctx, m.crypto, d, fn)
}

// DoMail runs fn on the mail pool and waits for its result.
func (m *WorkManager) DoMail(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	return do(ctx, m.mail, d, fn)
}

// do submits fn and blocks until it finishes, d elapses or ctx is done.
// fn sees a context bounded by both the pool guard and d.
func do(ctx context.Context, pool *workerpool.Pool, d time.Duration, fn func(ctx context.Context) error) error {
	resultCh := make(chan error, 1)
	err := pool.Submit(func(poolCtx context.Context) {
		taskCtx, cancel := context.WithTimeout(poolCtx, d)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
		resultCh <- fn(taskCtx)
	})
	if err != nil {
		return fmt.Errorf("%s pool: %w", pool.Name(), err)
	}

	// Hard cap slightly above the task deadline in case fn ignores its context.
	timer := time.NewTimer(d + time.Second)
	defer timer.Stop()

	select {
	case err := <-resultCh:
		return err
	case <-timer.C:
		return fmt.Errorf("%s pool: %w", pool.Name(), context.DeadlineExceeded)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunWithTimeout runs a function respecting a deadline and returns whether it completed.
func RunWithTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context)) bool {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	done := make(chan struct{})
	go func() { fn(ctx); close(done) }()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
