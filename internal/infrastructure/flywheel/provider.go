package flywheel

import (
	"context"
	"sync"
	"time"

	"imagulator/internal/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

// Provider hands out a single connected Client. The connection is established
// lazily on first use behind a mutex, and a connection failure is retried on
// the next call instead of being cached forever.
type Provider struct {
	apiKey         string
	store          *storage.Store
	connectTimeout time.Duration
	requestTimeout time.Duration
	log            *logrus.Logger

	mu     sync.Mutex
	client *Client
}

func NewProvider(apiKey string, store *storage.Store, connectTimeout, requestTimeout time.Duration, log *logrus.Logger) *Provider {
	return &Provider{
		apiKey:         apiKey,
		store:          store,
		connectTimeout: connectTimeout,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

// Configured reports whether a credential is present at all.
func (p *Provider) Configured() bool {
	return p.apiKey != ""
}

// Client returns the shared connected client, establishing the connection on
// first use.
func (p *Provider) Client(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client, err := New(p.apiKey, p.store, p.requestTimeout, p.log)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, p.connectTimeout)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, err
	}

	p.client = client
	p.log.Info("Connected to Flywheel")
	return client, nil
}
