package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIdentityAndCallerKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var gotUser, gotKey string
	r := gin.New()
	r.Use(Identity())
	r.GET("/", func(c *gin.Context) {
		gotUser, _ = UserID(c)
		gotKey = CallerKey(c)
	})

	cases := []struct {
		header   string
		wantUser string
		wantKey  string
	}{
		{"alice", "alice", "user:alice"},
		{"  bob  ", "bob", "user:bob"},
		{"", "", "ip:192.0.2.1"},
		{"   ", "", "ip:192.0.2.1"},
		{strings.Repeat("a", 65), "", "ip:192.0.2.1"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		if tc.header != "" {
			req.Header.Set(HeaderUser, tc.header)
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
		if gotUser != tc.wantUser || gotKey != tc.wantKey {
			t.Errorf("header %q: user=%q key=%q, want %q %q", tc.header, gotUser, gotKey, tc.wantUser, tc.wantKey)
		}
	}
}
