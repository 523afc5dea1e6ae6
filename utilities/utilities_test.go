package utilities

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	SetSessionSecret("test-secret")
	now := time.Now()
	tok, err := GenerateSessionToken("user-1", true, now)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ValidateSessionToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "user-1" || !claims.EmailVerified || claims.TS != now.UnixMilli() {
		t.Errorf("claims = %+v", claims)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != SessionExpiry {
		t.Errorf("lifetime = %v, want %v", got, SessionExpiry)
	}
}

func TestSessionToken_Rejects(t *testing.T) {
	SetSessionSecret("test-secret")
	expired, _ := GenerateSessionToken("user-1", false, time.Now().Add(-8*24*time.Hour))
	if _, err := ValidateSessionToken(expired); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expired: err = %v", err)
	}

	SetSessionSecret("other-secret")
	forged, _ := GenerateSessionToken("user-1", false, time.Now())
	SetSessionSecret("test-secret")
	if _, err := ValidateSessionToken(forged); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("wrong key: err = %v", err)
	}
	if _, err := ValidateSessionToken("not-a-jwt"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("garbage: err = %v", err)
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetSessionSecret("test-secret")
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, SessionUserID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: status = %d, want 401", w.Code)
	}

	tok, _ := GenerateSessionToken("user-42", false, time.Now())
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "user-42" {
		t.Errorf("valid cookie: %d %q", w.Code, w.Body.String())
	}
}

func TestSetSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SetSessionCookie(c, "tok", true)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v", cookies)
	}
	ck := cookies[0]
	if ck.Name != SessionCookie || !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie = %+v", ck)
	}
	if ck.MaxAge != int(SessionExpiry.Seconds()) {
		t.Errorf("MaxAge = %d", ck.MaxAge)
	}
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	var n int32
	bus.Subscribe("saved", func(data interface{}) {
		atomic.AddInt32(&n, int32(data.(int)))
	})
	bus.Subscribe("saved", func(interface{}) { atomic.AddInt32(&n, 1) })
	bus.Publish("saved", 10)
	bus.Publish("other", 100)
	bus.Wait()
	if got := atomic.LoadInt32(&n); got != 11 {
		t.Errorf("n = %d, want 11", got)
	}
}
