// Package widget implements the client-side HubSpot connection lifecycle:
// authorize, wait for the authorization window to close, exchange for
// stored credentials, and load items through the backend proxy.
package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SREYASABU/integration-platform/models"
)

// State is the connection state of a widget
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotConnected is returned when items are requested before connecting
var ErrNotConnected = errors.New("not connected: connect the integration before loading items")

// CredentialStore is the parent-owned home for the opaque credentials. The
// widget never inspects what it stores; the connection state is derived
// from whether anything is stored at all.
type CredentialStore interface {
	Credentials() json.RawMessage
	SetCredentials(creds json.RawMessage)
}

// MemoryStore is an in-memory CredentialStore
type MemoryStore struct {
	mu    sync.Mutex
	creds json.RawMessage
}

// Credentials returns the stored credentials, or nil
func (s *MemoryStore) Credentials() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// SetCredentials replaces the stored credentials
func (s *MemoryStore) SetCredentials(creds json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
}

// DefaultPollInterval is how often the widget checks whether the
// authorization window has closed.
const DefaultPollInterval = 200 * time.Millisecond

// Config holds the collaborators and identity a ConnectionWidget needs
type Config struct {
	Client BackendClient
	Opener PopupOpener
	Store  CredentialStore
	UserID string
	OrgID  string

	// PollInterval defaults to DefaultPollInterval when zero.
	PollInterval time.Duration
}

// ConnectionWidget drives the connect/poll/exchange/fetch lifecycle
type ConnectionWidget struct {
	client BackendClient
	opener PopupOpener
	store  CredentialStore
	userID string
	orgID  string

	pollInterval time.Duration

	mu          sync.Mutex
	connecting  bool
	items       []models.IntegrationItem
	subscribers []func(State)
}

// New creates a new connection widget with the given configuration
func New(cfg Config) (*ConnectionWidget, error) {
	if cfg.Client == nil {
		return nil, errors.New("backend client is required")
	}
	if cfg.Opener == nil {
		return nil, errors.New("popup opener is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("credential store is required")
	}
	if cfg.UserID == "" {
		return nil, errors.New("user ID is required")
	}
	if cfg.OrgID == "" {
		return nil, errors.New("org ID is required")
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &ConnectionWidget{
		client:       cfg.Client,
		opener:       cfg.Opener,
		store:        cfg.Store,
		userID:       cfg.UserID,
		orgID:        cfg.OrgID,
		pollInterval: pollInterval,
	}, nil
}

// State returns the current connection state. Connected holds exactly when
// the store holds a non-empty credential value.
func (w *ConnectionWidget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *ConnectionWidget) stateLocked() State {
	if w.connecting {
		return Connecting
	}
	if !isEmptyCredentials(w.store.Credentials()) {
		return Connected
	}
	return Disconnected
}

// Subscribe registers a callback invoked on every state transition. The
// widget has no presentation dependency; hosts redraw from here.
func (w *ConnectionWidget) Subscribe(fn func(State)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscribers = append(w.subscribers, fn)
}

// notify invokes subscribers with the current state
func (w *ConnectionWidget) notify() {
	w.mu.Lock()
	state := w.stateLocked()
	subscribers := make([]func(State), len(w.subscribers))
	copy(subscribers, w.subscribers)
	w.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
}

// Connect runs one full connect cycle: authorize, open the authorization
// window, poll until it closes, then exchange for credentials. A second
// Connect while one is in flight is a no-op.
func (w *ConnectionWidget) Connect(ctx context.Context) error {
	w.mu.Lock()
	if w.connecting {
		w.mu.Unlock()
		return nil
	}
	w.connecting = true
	w.mu.Unlock()
	w.notify()

	err := w.runConnectCycle(ctx)

	w.mu.Lock()
	w.connecting = false
	w.mu.Unlock()
	w.notify()

	return err
}

func (w *ConnectionWidget) runConnectCycle(ctx context.Context) error {
	authURL, err := w.client.Authorize(ctx, w.userID, w.orgID)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	popup, err := w.opener.Open(authURL)
	if err != nil {
		return fmt.Errorf("failed to open authorization window: %w", err)
	}

	if err := w.waitForClose(ctx, popup); err != nil {
		return err
	}

	return w.exchange(ctx)
}

// waitForClose polls the popup at a fixed interval until it reports
// closed. The ticker is stopped on every exit path; cancelling ctx is the
// explicit cancellation handle.
func (w *ConnectionWidget) waitForClose(ctx context.Context, popup Popup) error {
	if popup.Closed() {
		return nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if popup.Closed() {
				return nil
			}
		}
	}
}

// exchange asks the backend for the credentials the completed (or
// abandoned) authorization produced. An empty value means the user closed
// the window without finishing OAuth; that is a silent return to
// Disconnected, not an error.
func (w *ConnectionWidget) exchange(ctx context.Context) error {
	raw, err := w.client.ExchangeCredentials(ctx, w.userID, w.orgID)
	if err != nil {
		return fmt.Errorf("credential exchange failed: %w", err)
	}

	if isEmptyCredentials(raw) {
		return nil
	}

	w.store.SetCredentials(raw)
	return nil
}

// LoadItems fetches items using the stored credentials and replaces the
// in-memory list. When disconnected it performs no network call and the
// list is left untouched. Repeated calls simply refresh the list.
func (w *ConnectionWidget) LoadItems(ctx context.Context) ([]models.IntegrationItem, error) {
	creds := w.store.Credentials()
	if isEmptyCredentials(creds) {
		return nil, ErrNotConnected
	}

	items, err := w.client.FetchItems(ctx, creds)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.items = items
	w.mu.Unlock()

	return items, nil
}

// Items returns a copy of the current item list
func (w *ConnectionWidget) Items() []models.IntegrationItem {
	w.mu.Lock()
	defer w.mu.Unlock()

	items := make([]models.IntegrationItem, len(w.items))
	copy(items, w.items)
	return items
}

// ClearItems empties the item list. It never issues a network call and
// always succeeds.
func (w *ConnectionWidget) ClearItems() {
	w.mu.Lock()
	w.items = nil
	w.mu.Unlock()
}

// isEmptyCredentials reports whether a raw credential value should count
// as "nothing stored". The backend answers null when no connection exists
// and an empty object when the flow was abandoned.
func isEmptyCredentials(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "{}", `""`:
		return true
	}
	return false
}
