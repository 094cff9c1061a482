package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPChecker_Status200(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if !out.Up {
		t.Fatalf("want up, got %+v", out)
	}
	if !out.StatusCode.Valid || out.StatusCode.Int64 != 200 {
		t.Fatalf("want status 200, got %+v", out.StatusCode)
	}
	if !out.ResponseTime.Valid || out.ResponseTime.Float64 < 0 {
		t.Fatalf("want response time present, got %+v", out.ResponseTime)
	}
	if out.ErrorMessage.Valid {
		t.Fatalf("want no error message on success, got %q", out.ErrorMessage.String)
	}
	if out.URL != s.URL {
		t.Fatalf("url mismatch: %q", out.URL)
	}
}

// Non-200 statuses are failures that keep the status code but carry no
// error message, same as any other failed probe for counting purposes.
func TestHTTPChecker_Status404IsDown(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if out.Up {
		t.Fatalf("want down, got %+v", out)
	}
	if !out.StatusCode.Valid || out.StatusCode.Int64 != 404 {
		t.Fatalf("want status 404, got %+v", out.StatusCode)
	}
	if !out.ResponseTime.Valid {
		t.Fatal("want response time present for completed transport")
	}
	if out.ErrorMessage.Valid {
		t.Fatalf("want no error message for status failure, got %q", out.ErrorMessage.String)
	}
}

// Only exact 200 counts as success; other 2xx are failures.
func TestHTTPChecker_Status204IsDown(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if out.Up {
		t.Fatalf("want down for 204, got %+v", out)
	}
}

func TestHTTPChecker_ResponseTimeStopsAtHeaders(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.(http.Flusher).Flush()
		time.Sleep(400 * time.Millisecond)
		w.Write([]byte("slow body"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if !out.Up {
		t.Fatalf("want up, got %+v", out)
	}
	if !out.ResponseTime.Valid || out.ResponseTime.Float64 >= 0.4 {
		t.Fatalf("response time must not include the body drain, got %+v", out.ResponseTime)
	}
}

func TestHTTPChecker_TransportError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(50 * time.Millisecond)
	out := chk.Check(context.Background(), s.URL)
	if out.Up {
		t.Fatalf("want down on timeout, got %+v", out)
	}
	if !out.ErrorMessage.Valid || out.ErrorMessage.String == "" {
		t.Fatal("want error message on transport failure")
	}
	if out.StatusCode.Valid || out.ResponseTime.Valid {
		t.Fatalf("status code and response time must be absent on transport failure: %+v", out)
	}
}
