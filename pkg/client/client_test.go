package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingServer(t *testing.T, handler http.Handler) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	hits := &atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func loggedInClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c := New(baseURL, opts...)
	require.NoError(t, c.store.Establish(Identity{
		OrganizationID: "42",
		SessionToken:   "test-token",
		UserID:         "42",
	}))
	return c
}

func TestCreateDonationLocalValidation(t *testing.T) {
	srv, hits := newCountingServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued for invalid input")
	}))
	c := loggedInClient(t, srv.URL)

	cases := []struct {
		name  string
		in    DonationInput
		field string
	}{
		{"missing food type", DonationInput{FoodName: "Rice", Quantity: "5", QuantityUnit: "kg", ExpiryDate: time.Now().Add(time.Hour), PickupAddress: "1 Main St", ContactPhone: "555-0100"}, "food_type"},
		{"missing quantity", DonationInput{FoodType: "GRAINS", FoodName: "Rice", QuantityUnit: "kg", ExpiryDate: time.Now().Add(time.Hour), PickupAddress: "1 Main St", ContactPhone: "555-0100"}, "quantity"},
		{"missing expiry", DonationInput{FoodType: "GRAINS", FoodName: "Rice", Quantity: "5", QuantityUnit: "kg", PickupAddress: "1 Main St", ContactPhone: "555-0100"}, "expiry_date"},
		{"blank address", DonationInput{FoodType: "GRAINS", FoodName: "Rice", Quantity: "5", QuantityUnit: "kg", ExpiryDate: time.Now().Add(time.Hour), PickupAddress: "   ", ContactPhone: "555-0100"}, "pickup_address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.CreateDonation(t.Context(), tc.in)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
	assert.Zero(t, hits.Load(), "local validation must not hit the network")
}

func TestUpdateProfileLocalValidation(t *testing.T) {
	srv, hits := newCountingServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued for invalid input")
	}))
	c := loggedInClient(t, srv.URL)

	_, err := c.UpdateProfile(t.Context(), ProfileUpdate{Name: "Food Bank", Email: "fb@example.org", Phone: ""})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "phone", fieldErr.Field)
	assert.Zero(t, hits.Load())
}

func TestConfirmationGates(t *testing.T) {
	srv, hits := newCountingServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("declined confirmation must not reach the server")
	}))
	decline := ConfirmerFunc(func(string) bool { return false })
	c := loggedInClient(t, srv.URL, WithConfirmer(decline))

	_, err := c.CancelDonation(t.Context(), "7")
	assert.ErrorIs(t, err, ErrConfirmationDeclined)

	_, err = c.SubmitRequest(t.Context(), "7")
	assert.ErrorIs(t, err, ErrConfirmationDeclined)

	require.NoError(t, c.store.Establish(Identity{AdminToken: "admin-token", UserID: "admin"}))
	_, err = c.AdminDecide(t.Context(), "9", DecisionApprove, "")
	assert.ErrorIs(t, err, ErrConfirmationDeclined)

	assert.Zero(t, hits.Load())
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "conflict",
				"message": "this donation is no longer available",
			},
		})
	}))
	defer srv.Close()
	c := loggedInClient(t, srv.URL)

	_, err := c.ListMyDonations(t.Context())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "conflict", apiErr.Type)
	assert.Equal(t, "this donation is no longer available", apiErr.Message)
}

func TestRequestsCarryAuthHeader(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		json.NewEncoder(w).Encode([]Donation{})
	}))
	defer srv.Close()
	c := loggedInClient(t, srv.URL)

	_, err := c.ListMyDonations(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestDonationDecodesServerShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{
			"id":              "1952847391925264384",
			"organization_id": "1952847391925264001",
			"food_type":       "GRAINS",
			"food_name":       "Rice",
			"quantity":        "25",
			"quantity_unit":   "kg",
			"status":          StatusAvailable,
		}})
	}))
	defer srv.Close()
	c := loggedInClient(t, srv.URL)

	donations, err := c.ListAvailableDonations(t.Context())
	require.NoError(t, err)
	require.Len(t, donations, 1)
	assert.Equal(t, "1952847391925264001", donations[0].OrgID)
	assert.Equal(t, "25", donations[0].Quantity)
}

func TestUnauthenticatedCallsFailFast(t *testing.T) {
	srv, hits := newCountingServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := New(srv.URL)

	_, err := c.ListMyDonations(t.Context())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = c.AdminListPending(t.Context())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, hits.Load())
}

func TestLoginEstablishesIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/organizations/login":
			json.NewEncoder(w).Encode(map[string]string{
				"token":           "sess-abc",
				"organization_id": "12345",
				"expires_at":      time.Now().Add(time.Hour).Format(time.RFC3339),
			})
		case "/api/organizations/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	identity, err := c.Login(t.Context(), "fb@example.org", "changeme-org")
	require.NoError(t, err)
	assert.Equal(t, "12345", identity.OrganizationID)
	assert.True(t, identity.IsOrg())

	stored, err := c.Sessions().Current()
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", stored.SessionToken)

	require.NoError(t, c.Logout(t.Context()))
	_, err = c.Sessions().Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyApproved(req DonationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, req.ID)
}

func (n *recordingNotifier) ids() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func TestWatchNotifiesOnce(t *testing.T) {
	var (
		mu       sync.Mutex
		marked   []string
		requests = []DonationRequest{
			{ID: "1", Status: RequestApproved, NotificationShown: false},
			{ID: "2", Status: RequestPending},
			{ID: "3", Status: RequestApproved, NotificationShown: true},
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/config":
			json.NewEncoder(w).Encode(CoordinationConfig{PollIntervalSeconds: 1, ExpiringSoonDays: 3})
		case r.URL.Path == "/api/donation-requests" && r.Method == http.MethodGet:
			mu.Lock()
			out := append([]DonationRequest(nil), requests...)
			mu.Unlock()
			json.NewEncoder(w).Encode(out)
		case r.Method == http.MethodPost:
			mu.Lock()
			marked = append(marked, r.URL.Path)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()
	c := loggedInClient(t, srv.URL)

	notifier := &recordingNotifier{}
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, notifier) }()

	// Two polls: the immediate one plus at least one tick.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(marked) >= 1
	}, 5*time.Second, 20*time.Millisecond)
	time.Sleep(1500 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}

	assert.Equal(t, []string{"1"}, notifier.ids(), "each approval notifies exactly once")
	mu.Lock()
	assert.Equal(t, []string{"/api/donation-requests/1/mark-notified"}, marked)
	mu.Unlock()
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	_, err := store.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	identity := Identity{OrganizationID: "77", SessionToken: "tok", UserID: "77"}
	require.NoError(t, store.Establish(identity))

	reloaded := NewFileStore(path)
	got, err := reloaded.Current()
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	require.NoError(t, store.Clear())
	_, err = store.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.NoError(t, store.Clear())
}
