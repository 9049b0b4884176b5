package widget

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SREYASABU/integration-platform/models"
)

// fakeBackend is a scripted BackendClient that counts calls
type fakeBackend struct {
	mu sync.Mutex

	authURL     string
	authErr     error
	creds       json.RawMessage
	exchangeErr error
	items       []models.IntegrationItem
	itemsErr    error

	authorizeCalls  int
	exchangeCalls   int
	fetchCalls      int
	lastCredentials json.RawMessage
}

func (f *fakeBackend) Authorize(ctx context.Context, userID, orgID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authorizeCalls++
	return f.authURL, f.authErr
}

func (f *fakeBackend) ExchangeCredentials(ctx context.Context, userID, orgID string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	return f.creds, f.exchangeErr
}

func (f *fakeBackend) FetchItems(ctx context.Context, credentials json.RawMessage) ([]models.IntegrationItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	f.lastCredentials = credentials
	return f.items, f.itemsErr
}

func (f *fakeBackend) calls() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorizeCalls, f.exchangeCalls, f.fetchCalls
}

// fakeOpener hands out a pre-built popup
type fakeOpener struct {
	mu      sync.Mutex
	popup   *SignalPopup
	openErr error
	opened  []string
}

func (o *fakeOpener) Open(url string) (Popup, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.opened = append(o.opened, url)
	return o.popup, nil
}

func newTestWidget(t *testing.T, backend *fakeBackend, opener *fakeOpener) *ConnectionWidget {
	t.Helper()
	w, err := New(Config{
		Client:       backend,
		Opener:       opener,
		Store:        &MemoryStore{},
		UserID:       "u1",
		OrgID:        "o1",
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)
	return w
}

func TestConnect_FullRoundTrip(t *testing.T) {
	backend := &fakeBackend{
		authURL: "https://hs.example/oauth?state=x",
		creds:   json.RawMessage(`{"token":"abc"}`),
		items: []models.IntegrationItem{
			{ID: "1", Title: "Acme Co", Type: "company"},
		},
	}
	popup := &SignalPopup{}
	opener := &fakeOpener{popup: popup}
	w := newTestWidget(t, backend, opener)

	var transitions []State
	w.Subscribe(func(s State) { transitions = append(transitions, s) })

	// Close the popup shortly after it opens, as a user would
	time.AfterFunc(5*time.Millisecond, popup.Close)

	require.NoError(t, w.Connect(context.Background()))

	assert.Equal(t, Connected, w.State())
	assert.Equal(t, []State{Connecting, Connected}, transitions)
	assert.Equal(t, []string{"https://hs.example/oauth?state=x"}, opener.opened)

	// The exact exchanged credentials are what item loading serializes
	items, err := w.LoadItems(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"abc"}`, string(backend.lastCredentials))
	require.Len(t, items, 1)
	assert.Equal(t, "Acme Co", items[0].Title)
	assert.Equal(t, "company", items[0].Type)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, items, w.Items())
}

func TestConnect_AbandonedAuthorization(t *testing.T) {
	// Exchange answers an empty object: the user closed the popup without
	// completing OAuth. Silent revert, no error.
	backend := &fakeBackend{
		authURL: "https://hs.example/oauth",
		creds:   json.RawMessage(`{}`),
	}
	popup := &SignalPopup{}
	popup.Close()
	w := newTestWidget(t, backend, &fakeOpener{popup: popup})

	err := w.Connect(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, Disconnected, w.State())
}

func TestConnect_AuthorizeFailure(t *testing.T) {
	backend := &fakeBackend{
		authErr: &BackendError{StatusCode: 500, Detail: "bad org"},
	}
	w := newTestWidget(t, backend, &fakeOpener{popup: &SignalPopup{}})

	err := w.Connect(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad org")
	assert.Equal(t, Disconnected, w.State())

	_, exchanges, _ := backend.calls()
	assert.Zero(t, exchanges, "no exchange after a failed authorize")
}

func TestConnect_ExchangeFailure(t *testing.T) {
	backend := &fakeBackend{
		authURL:     "https://hs.example/oauth",
		exchangeErr: errors.New("connection refused"),
	}
	popup := &SignalPopup{}
	popup.Close()
	w := newTestWidget(t, backend, &fakeOpener{popup: popup})

	err := w.Connect(context.Background())

	assert.Error(t, err)
	assert.Equal(t, Disconnected, w.State())
}

func TestConnect_SecondCallWhileConnectingIsNoOp(t *testing.T) {
	backend := &fakeBackend{
		authURL: "https://hs.example/oauth",
		creds:   json.RawMessage(`{"token":"t1"}`),
	}
	popup := &SignalPopup{}
	w := newTestWidget(t, backend, &fakeOpener{popup: popup})

	done := make(chan error, 1)
	go func() { done <- w.Connect(context.Background()) }()

	// Wait until the first cycle is visibly in flight
	require.Eventually(t, func() bool { return w.State() == Connecting }, time.Second, time.Millisecond)

	require.NoError(t, w.Connect(context.Background()))

	popup.Close()
	require.NoError(t, <-done)

	authorizes, _, _ := backend.calls()
	assert.Equal(t, 1, authorizes, "the second Connect must not start another cycle")
	assert.Equal(t, Connected, w.State())
}

func TestConnect_Cancellation(t *testing.T) {
	backend := &fakeBackend{authURL: "https://hs.example/oauth"}
	w := newTestWidget(t, backend, &fakeOpener{popup: &SignalPopup{}})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(5*time.Millisecond, cancel)

	err := w.Connect(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Disconnected, w.State())
}

func TestLoadItems_WhenDisconnected(t *testing.T) {
	backend := &fakeBackend{}
	w := newTestWidget(t, backend, &fakeOpener{popup: &SignalPopup{}})

	items, err := w.LoadItems(context.Background())

	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Nil(t, items)

	_, _, fetches := backend.calls()
	assert.Zero(t, fetches, "disconnected load must not touch the network")
}

func TestLoadItems_FailureLeavesListUntouched(t *testing.T) {
	backend := &fakeBackend{
		authURL: "https://hs.example/oauth",
		creds:   json.RawMessage(`{"token":"t1"}`),
		items: []models.IntegrationItem{
			{ID: "1", Title: "Acme Co", Type: "company"},
		},
	}
	popup := &SignalPopup{}
	popup.Close()
	w := newTestWidget(t, backend, &fakeOpener{popup: popup})
	require.NoError(t, w.Connect(context.Background()))

	_, err := w.LoadItems(context.Background())
	require.NoError(t, err)
	require.Len(t, w.Items(), 1)

	backend.mu.Lock()
	backend.itemsErr = errors.New("backend down")
	backend.mu.Unlock()

	_, err = w.LoadItems(context.Background())
	assert.Error(t, err)
	assert.Len(t, w.Items(), 1, "a failed refresh keeps the prior list")
}

func TestClearItems(t *testing.T) {
	backend := &fakeBackend{
		authURL: "https://hs.example/oauth",
		creds:   json.RawMessage(`{"token":"t1"}`),
		items: []models.IntegrationItem{
			{ID: "1", Title: "Acme Co", Type: "company"},
		},
	}
	popup := &SignalPopup{}
	popup.Close()
	w := newTestWidget(t, backend, &fakeOpener{popup: popup})

	// Clearing while disconnected and empty succeeds and stays off the network
	w.ClearItems()
	assert.Empty(t, w.Items())

	require.NoError(t, w.Connect(context.Background()))
	_, err := w.LoadItems(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, w.Items())

	_, _, fetchesBefore := backend.calls()
	w.ClearItems()
	_, _, fetchesAfter := backend.calls()

	assert.Empty(t, w.Items())
	assert.Equal(t, fetchesBefore, fetchesAfter, "clear must not issue a network call")
	assert.Equal(t, Connected, w.State(), "clearing items does not disconnect")
}

func TestStateMatchesStoredCredentials(t *testing.T) {
	store := &MemoryStore{}
	w, err := New(Config{
		Client:       &fakeBackend{},
		Opener:       &fakeOpener{popup: &SignalPopup{}},
		Store:        store,
		UserID:       "u1",
		OrgID:        "o1",
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, Disconnected, w.State())

	store.SetCredentials(json.RawMessage(`{"token":"abc"}`))
	assert.Equal(t, Connected, w.State())

	store.SetCredentials(nil)
	assert.Equal(t, Disconnected, w.State())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Client: &fakeBackend{}, Opener: &fakeOpener{}, Store: &MemoryStore{}, UserID: "u1"})
	assert.Error(t, err, "org ID is required")
}

func TestIsEmptyCredentials(t *testing.T) {
	empty := []string{"", "null", "{}", `""`, " null \n"}
	for _, raw := range empty {
		assert.True(t, isEmptyCredentials(json.RawMessage(raw)), "expected %q to be empty", raw)
	}

	assert.False(t, isEmptyCredentials(json.RawMessage(`{"token":"abc"}`)))
}
