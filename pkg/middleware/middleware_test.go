package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 2)
	fixed := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		r.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	if codes[0] != 204 || codes[1] != 204 || codes[2] != 429 {
		t.Errorf("codes = %v, want [204 204 429]", codes)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	r.ServeHTTP(w, req)
	if w.Code != 204 {
		t.Errorf("other client = %d, want 204", w.Code)
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }
	if !rl.Allow("a") || rl.Allow("a") {
		t.Fatal("burst of 1 should allow exactly one request")
	}
	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Error("token should refill after a second")
	}
}

func TestRateLimiter_SweepsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }
	rl.Allow("a")
	now = now.Add(limiterIdle + time.Second)
	rl.Allow("b")
	if _, ok := rl.visitors["a"]; ok {
		t.Error("idle visitor was not swept")
	}
}

func TestRequestDump_KeepsBodyForHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestDumpMiddleware())
	var got string
	r.POST("/*path", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		got = string(b)
	})

	for _, path := range []string{"/api/catalog/products", "/api/questionnaire/save"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"a":1}`))
		r.ServeHTTP(httptest.NewRecorder(), req)
		if got != `{"a":1}` {
			t.Errorf("%s: handler body = %q", path, got)
		}
	}
}

func TestRedaction(t *testing.T) {
	if !redacted("/api/questionnaire/save") || !redacted("/api/generate-pdf") {
		t.Error("health routes must be redacted")
	}
	if redacted("/api/catalog/products") {
		t.Error("catalog should not be redacted")
	}
	h := http.Header{"Cookie": {"arc_session=x"}, "Accept": {"*/*"}}
	safe := safeHeaders(h)
	if safe.Get("Cookie") != "[redacted]" || safe.Get("Accept") != "*/*" {
		t.Errorf("headers = %v", safe)
	}
	if h.Get("Cookie") != "arc_session=x" {
		t.Error("original headers modified")
	}
}
