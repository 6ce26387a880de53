package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct {
	caller, scope, key string
}

func idemRouter(lookup IdempotencyLookup, seen *[]bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.POST("/invoice", IdempotencyValidator("lightning.invoice", IdempotencyOptions{}, lookup), func(c *gin.Context) {
		*seen = append(*seen, IsReplay(c), IsRateBypass(c))
		c.Status(http.StatusOK)
	})
	return r
}

func TestIdempotencyValidator_NoHeader(t *testing.T) {
	called := false
	var seen []bool
	r := idemRouter(func(context.Context, string, string, string, time.Time) (bool, error) {
		called = true
		return true, nil
	}, &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoice", nil))
	if w.Code != http.StatusOK || called {
		t.Fatalf("code=%d lookupCalled=%v", w.Code, called)
	}
	if seen[0] || seen[1] {
		t.Fatalf("no replay expected")
	}
}

func TestIdempotencyValidator_RejectsMalformedKey(t *testing.T) {
	var seen []bool
	r := idemRouter(nil, &seen)
	for _, key := range []string{"has space", "semi;colon", strings.Repeat("k", 201)} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoice", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Errorf("key %q: code=%d body=%s", key, w.Code, w.Body.String())
		}
	}
	if len(seen) != 0 {
		t.Fatalf("handler must not run for bad keys")
	}
}

func TestIdempotencyValidator_LookupScopesAndMarksReplay(t *testing.T) {
	var calls []lookupCall
	var seen []bool
	r := idemRouter(func(_ context.Context, caller, scope, key string, _ time.Time) (bool, error) {
		calls = append(calls, lookupCall{caller, scope, key})
		return key == "seen-before", nil
	}, &seen)

	for _, key := range []string{"fresh-key", "seen-before"} {
		req := httptest.NewRequest(http.MethodPost, "/invoice", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		req.Header.Set(HeaderUser, "alice")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	want := []lookupCall{
		{"user:alice", "lightning.invoice", "fresh-key"},
		{"user:alice", "lightning.invoice", "seen-before"},
	}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("lookup calls %v", calls)
	}
	if seen[0] || seen[1] || !seen[2] || !seen[3] {
		t.Fatalf("replay flags %v", seen)
	}
}

func TestIdempotencyValidator_LookupErrorIsNotReplay(t *testing.T) {
	var seen []bool
	r := idemRouter(func(context.Context, string, string, string, time.Time) (bool, error) {
		return false, errors.New("db down")
	}, &seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/invoice", nil)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || seen[0] {
		t.Fatalf("code=%d replay=%v", w.Code, seen[0])
	}
}

func TestIdempotencyKeyHelper(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := IdempotencyKey(c); ok {
		t.Fatalf("no key expected")
	}
	c.Set(ctxKeyIdemKey, "abc")
	if k, ok := IdempotencyKey(c); !ok || k != "abc" {
		t.Fatalf("got %q %v", k, ok)
	}
}
