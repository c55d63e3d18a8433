package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const bookingJSON = `{"listing_id":"listing:1","requester_email":"carol@example.com","provider_email":"pat@example.com"}`

func newTestStore(t *testing.T, cfg IdempotencyConfig) *IdempotencyStore {
	t.Helper()
	store := NewIdempotencyStore(cfg)
	t.Cleanup(store.Stop)
	return store
}

// countingHandler records invocations and answers like the booking
// creation endpoint
type countingHandler struct {
	calls int32
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&h.calls, 1)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"data":{"id":"booking:1","status":"Pending"}}`))
}

func bookingRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(bookingJSON))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotency_GETBypassesStore(t *testing.T) {
	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/bookings/requested", nil)
		req.Header.Set("Idempotency-Key", "read-key")
		wrapped.ServeHTTP(httptest.NewRecorder(), req)
	}

	if handler.calls != 2 {
		t.Errorf("expected reads to always execute, got %d calls", handler.calls)
	}
}

func TestIdempotency_NoKeyProcessesEveryTime(t *testing.T) {
	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	for i := 0; i < 2; i++ {
		wrapped.ServeHTTP(httptest.NewRecorder(), bookingRequest(""))
	}

	if handler.calls != 2 {
		t.Errorf("expected both requests to execute, got %d calls", handler.calls)
	}
}

func TestIdempotency_RetryReplaysResponse(t *testing.T) {
	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, bookingRequest("book-retry-1"))

	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, bookingRequest("book-retry-1"))

	if handler.calls != 1 {
		t.Fatalf("expected the booking to be created once, got %d calls", handler.calls)
	}
	if second.Code != http.StatusCreated {
		t.Errorf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("expected identical bodies, got %s vs %s", second.Body.String(), first.Body.String())
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("expected replay marker on the second response")
	}
	if first.Header().Get("X-Idempotency-Replayed") != "" {
		t.Error("expected no replay marker on the first response")
	}
}

func TestIdempotency_DifferentBodyIsDifferentRequest(t *testing.T) {
	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	wrapped.ServeHTTP(httptest.NewRecorder(), bookingRequest("book-key"))

	other := httptest.NewRequest(http.MethodPost, "/v1/bookings",
		strings.NewReader(`{"listing_id":"listing:2","requester_email":"carol@example.com","provider_email":"pat@example.com"}`))
	other.Header.Set("Idempotency-Key", "book-key")
	wrapped.ServeHTTP(httptest.NewRecorder(), other)

	if handler.calls != 2 {
		t.Errorf("expected distinct bodies to execute separately, got %d calls", handler.calls)
	}
}

func TestIdempotency_ScopedPerCaller(t *testing.T) {
	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	pat := bookingRequest("shared-key")
	pat.RemoteAddr = "192.0.2.10:1111"
	wrapped.ServeHTTP(httptest.NewRecorder(), pat)

	carol := bookingRequest("shared-key")
	carol.RemoteAddr = "192.0.2.20:2222"
	wrapped.ServeHTTP(httptest.NewRecorder(), carol)

	if handler.calls != 2 {
		t.Errorf("expected per-caller scoping, got %d calls", handler.calls)
	}
}

func TestIdempotency_ExpiredEntryProcessesAgain(t *testing.T) {
	store := newTestStore(t, IdempotencyConfig{TTL: time.Hour})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	wrapped.ServeHTTP(httptest.NewRecorder(), bookingRequest("book-aged"))

	// Age the cached entry past its TTL
	store.mu.Lock()
	for _, entry := range store.entries {
		entry.expiresAt = time.Now().Add(-time.Minute)
	}
	store.mu.Unlock()

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, bookingRequest("book-aged"))

	if handler.calls != 2 {
		t.Errorf("expected expired entry to re-execute, got %d calls", handler.calls)
	}
	if rec.Header().Get("X-Idempotency-Replayed") != "" {
		t.Error("expected a fresh response, not a replay")
	}
}

func TestIdempotency_ConcurrentDuplicatesExecuteOnce(t *testing.T) {
	store := newTestStore(t, IdempotencyConfig{})

	release := make(chan struct{})
	var calls int32
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"booking:1"}}`))
	})
	wrapped := Idempotency(store)(slow)

	recorders := [2]*httptest.ResponseRecorder{httptest.NewRecorder(), httptest.NewRecorder()}
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(rec *httptest.ResponseRecorder) {
			defer wg.Done()
			wrapped.ServeHTTP(rec, bookingRequest("book-race"))
		}(recorders[i])
	}

	// Let both requests reach the store before releasing the first
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one execution, got %d", got)
	}
	replays := 0
	for _, rec := range recorders {
		if rec.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d", rec.Code)
		}
		if rec.Header().Get("X-Idempotency-Replayed") == "true" {
			replays++
		}
	}
	if replays != 1 {
		t.Errorf("expected exactly one replayed response, got %d", replays)
	}
}
