package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		route    string
		expected string
	}{
		{"", "unmatched"},
		{"/", "root"},
		{"/metrics", "metrics"},
		{"/charges/:id", "charges"},
	}

	for _, tc := range testCases {
		if got := NormalizePath(tc.route); got != tc.expected {
			t.Fatalf("NormalizePath(%q): expected %q, got %q", tc.route, tc.expected, got)
		}
	}
}

func TestNormalizeMethod(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodOptions, http.MethodHead} {
		if got := NormalizeMethod(method); got != method {
			t.Fatalf("NormalizeMethod(%q): expected it unchanged, got %q", method, got)
		}
	}
	for _, method := range []string{"PROPFIND", "M199", ""} {
		if got := NormalizeMethod(method); got != "other" {
			t.Fatalf("NormalizeMethod(%q): expected 'other', got %q", method, got)
		}
	}
}

func TestObserveCharge(t *testing.T) {
	before := testutil.ToFloat64(ChargeTotal.WithLabelValues(OutcomeCardError))
	ObserveCharge(OutcomeCardError)
	after := testutil.ToFloat64(ChargeTotal.WithLabelValues(OutcomeCardError))
	if after-before != 1 {
		t.Fatalf("expected card_error counter to grow by 1, got %v", after-before)
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.Handle("PROPFIND", "/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.Handle("BREW", "/", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := RequestTotal.WithLabelValues(http.MethodGet, "root", "200")
	before := testutil.ToFloat64(counter)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected root counter to grow by 1, got %v", got)
	}

	other := RequestTotal.WithLabelValues("other", "root", "200")
	beforeOther := testutil.ToFloat64(other)
	seriesBefore := testutil.CollectAndCount(RequestTotal)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("PROPFIND", "/", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("BREW", "/", nil))
	if got := testutil.ToFloat64(other) - beforeOther; got != 2 {
		t.Fatalf("expected unknown methods to share the 'other' label, got %v", got)
	}
	if got := testutil.CollectAndCount(RequestTotal); got != seriesBefore {
		t.Fatalf("expected no new series for unknown methods, got %d -> %d", seriesBefore, got)
	}

	scrape := RequestTotal.WithLabelValues(http.MethodGet, "metrics", "200")
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if got := testutil.ToFloat64(scrape); got != 0 {
		t.Fatalf("expected /metrics to be skipped, got %v", got)
	}
}
