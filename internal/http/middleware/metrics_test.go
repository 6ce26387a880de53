package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/v1/lightning/address/:address", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/v1/lightning/address/:address", "200"))
	beforeMiss := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, unmatchedRoute, "404"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/lightning/address/alice@example.com", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/bob@example.com", nil))

	if got := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/v1/lightning/address/:address", "200")); got != before+1 {
		t.Fatalf("route counter: %v -> %v", before, got)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, unmatchedRoute, "404")); got != beforeMiss+1 {
		t.Fatalf("unmatched counter: %v -> %v", beforeMiss, got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight should return to 0, got %v", got)
	}
}
