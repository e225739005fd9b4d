package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"brandpulse/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// ErrUnavailable is returned by every accessor while the store is not ready.
// Callers use errors.Is to tell "could not determine" apart from "confirmed empty".
var ErrUnavailable = errors.New("document store unavailable")

type State int32

const (
	StateUninitialized State = iota
	StateConnecting
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

type Options struct {
	URI                    string
	DatabaseName           string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	MaxPoolSize            uint64
	// TLSInsecureFallback retries a failed dial with certificate verification disabled.
	TLSInsecureFallback bool
	// FailureTTL bounds how long a failed dial is cached. Zero caches until Reset.
	FailureTTL time.Duration
	// Dialer replaces the default connect-and-ping dial when set.
	Dialer Dialer
}

type Status struct {
	State        string `json:"state"`
	Enabled      bool   `json:"enabled"`
	URIPresent   bool   `json:"uri_present"`
	DatabaseName string `json:"db_name"`
	LastError    string `json:"last_error,omitempty"`
}

// Dialer opens and verifies a client. Replaced in tests.
type Dialer func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

// Store is the process-wide document store handle. The connection is
// established lazily on first use and cached for the process lifetime.
type Store struct {
	opts Options
	log  *logger.Logger
	dial Dialer
	now  func() time.Time

	connectMu sync.Mutex

	mu       sync.RWMutex
	state    State
	client   *mongo.Client
	lastErr  string
	failedAt time.Time
}

func New(opts Options, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	dial := opts.Dialer
	if dial == nil {
		dial = pingDialer
	}
	return &Store{
		opts: opts,
		log:  log,
		dial: dial,
		now:  time.Now,
	}
}

func pingDialer(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func (s *Store) DatabaseName() string {
	return s.opts.DatabaseName
}

// Client returns the shared client, connecting on first call. Concurrent first
// callers serialize on connectMu; exactly one of them dials.
func (s *Store) Client(ctx context.Context) (*mongo.Client, error) {
	if client, done, err := s.cached(); done {
		return client, err
	}

	s.connectMu.Lock()
	defer s.connectMu.Unlock()

	if client, done, err := s.cached(); done {
		return client, err
	}

	s.setState(StateConnecting)

	client, reason := s.connect(ctx)
	if client == nil {
		s.mu.Lock()
		s.state = StateFailed
		s.lastErr = reason
		s.failedAt = s.now()
		s.mu.Unlock()

		s.log.Warn("Document store connection failed", "reason", reason)
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, reason)
	}

	s.mu.Lock()
	s.state = StateReady
	s.client = client
	s.lastErr = ""
	s.mu.Unlock()

	s.log.Info("Successfully connected to MongoDB", "database", s.opts.DatabaseName)
	return client, nil
}

// cached reports the resolved outcome when no dial is needed.
func (s *Store) cached() (*mongo.Client, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.state {
	case StateReady:
		return s.client, true, nil
	case StateFailed:
		if s.opts.FailureTTL > 0 && s.now().Sub(s.failedAt) >= s.opts.FailureTTL {
			return nil, false, nil
		}
		return nil, true, fmt.Errorf("%w: %s", ErrUnavailable, s.lastErr)
	}
	return nil, false, nil
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Store) connect(ctx context.Context) (*mongo.Client, string) {
	uri, err := CleanURI(s.opts.URI)
	if err != nil {
		return nil, err.Error()
	}

	reason := ""
	for i, opts := range s.clientOptions(uri) {
		dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dialTimeout())
		client, err := s.dial(dialCtx, opts)
		cancel()
		if err == nil {
			return client, ""
		}
		reason = "connect_error: " + truncate(err.Error(), 200)
		s.log.Debug("MongoDB dial attempt failed", "attempt", i+1, "error", err)
	}
	return nil, reason
}

func (s *Store) dialTimeout() time.Duration {
	timeout := s.opts.ConnectTimeout
	if s.opts.ServerSelectionTimeout > timeout {
		timeout = s.opts.ServerSelectionTimeout
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return timeout
}

func (s *Store) clientOptions(uri string) []*options.ClientOptions {
	base := func() *options.ClientOptions {
		opts := options.Client().
			ApplyURI(uri).
			SetRetryWrites(true).
			SetWriteConcern(writeconcern.Majority())
		if s.opts.ConnectTimeout > 0 {
			opts.SetConnectTimeout(s.opts.ConnectTimeout)
		}
		if s.opts.ServerSelectionTimeout > 0 {
			opts.SetServerSelectionTimeout(s.opts.ServerSelectionTimeout)
		}
		if s.opts.SocketTimeout > 0 {
			opts.SetSocketTimeout(s.opts.SocketTimeout)
		}
		if s.opts.MaxPoolSize > 0 {
			opts.SetMaxPoolSize(s.opts.MaxPoolSize)
		}
		return opts
	}

	attempts := []*options.ClientOptions{base()}
	if s.opts.TLSInsecureFallback {
		attempts = append(attempts, base().SetTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}
	return attempts
}

func (s *Store) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(s.opts.DatabaseName), nil
}

func (s *Store) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := s.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Enabled reports whether a connection is (or can be) established.
func (s *Store) Enabled(ctx context.Context) bool {
	_, err := s.Client(ctx)
	return err == nil
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		State:        s.state.String(),
		Enabled:      s.state == StateReady,
		URIPresent:   strings.TrimSpace(s.opts.URI) != "",
		DatabaseName: s.opts.DatabaseName,
		LastError:    s.lastErr,
	}
}

// Reset drops a cached client or failure so the next accessor dials again.
func (s *Store) Reset(ctx context.Context) {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()

	s.mu.Lock()
	client := s.client
	s.client = nil
	s.state = StateUninitialized
	s.lastErr = ""
	s.failedAt = time.Time{}
	s.mu.Unlock()

	if client != nil {
		disconnect(ctx, client, s.log)
	}
}

func (s *Store) Close(ctx context.Context) {
	s.Reset(ctx)
	s.log.Info("Document store closed")
}

func disconnect(ctx context.Context, client *mongo.Client, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Warn("Failed to disconnect from MongoDB", "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
