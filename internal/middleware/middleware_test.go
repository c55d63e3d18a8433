package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const listingJSON = `{"name":"Plumbing","description":"Pipe repair","price":50,"currency":"USD"}`

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func TestChain_AppliesOutsideIn(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(okHandler("{}"), tag("request-id"), tag("logger"), tag("auth"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/listings", nil))

	want := []string{"request-id", "logger", "auth"}
	for i, name := range want {
		if i >= len(order) || order[i] != name {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings", nil))

	if seen == "" {
		t.Error("expected a generated request id in context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected response header %q to match context id %q",
			rec.Header().Get("X-Request-ID"), seen)
	}
}

func TestRequestID_HonorsCallerSupplied(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	req.Header.Set("X-Request-ID", "req-from-gateway")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req-from-gateway" {
		t.Errorf("expected caller-supplied id, got %q", seen)
	}
	if rec.Header().Get("X-Request-ID") != "req-from-gateway" {
		t.Errorf("expected id echoed in response, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestLogger_EmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/bookings", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("expected downstream status preserved, got %d", rec.Code)
	}
	line := buf.String()
	if !strings.Contains(line, `"path":"/v1/bookings"`) {
		t.Errorf("expected path in log line, got %s", line)
	}
	if !strings.Contains(line, `"status":201`) {
		t.Errorf("expected status in log line, got %s", line)
	}
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("listing cache corrupted")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal Server Error") {
		t.Errorf("expected problem body, got %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Error("expected panic to be logged")
	}
}

func TestRecovery_PassesThroughNormally(t *testing.T) {
	handler := Recovery(okHandler(listingJSON))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := CORS([]string{"https://handy.forgo.software"})(okHandler("{}"))

	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	req.Header.Set("Origin", "https://handy.forgo.software")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://handy.forgo.software" {
		t.Errorf("expected origin echoed, got %q", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := CORS([]string{"https://handy.forgo.software"})(okHandler("{}"))

	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header, got %q", got)
	}
}

func TestCORS_Wildcard(t *testing.T) {
	handler := CORS([]string{"*"})(okHandler("{}"))

	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected origin echoed under wildcard, got %q", got)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	var called bool
	handler := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/listings/listing:1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
	if called {
		t.Error("expected preflight not to reach the handler")
	}
	// Listing replacement uses PUT, so preflight must offer it
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PUT") {
		t.Errorf("expected PUT in allowed methods, got %q",
			rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestCompress_GzipsWhenAccepted(t *testing.T) {
	handler := Compress(okHandler(listingJSON))

	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", got)
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("expected gzipped body: %v", err)
	}
	decoded, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read gzipped body: %v", err)
	}
	if string(decoded) != listingJSON {
		t.Errorf("expected %s, got %s", listingJSON, decoded)
	}
}

func TestCompress_PlainWithoutAcceptEncoding(t *testing.T) {
	handler := Compress(okHandler(listingJSON))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings", nil))

	if got := rec.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("expected no encoding header, got %q", got)
	}
	if rec.Body.String() != listingJSON {
		t.Errorf("expected plain body, got %s", rec.Body.String())
	}
}
