package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hannakang/schedhub/internal/http/middlewares"
)

func limitedRouter(limit int, window time.Duration, keyFn func(*gin.Context) string) *gin.Engine {
	rl := middlewares.NewRateLimiter(limit, window)

	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(keyFn), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func postFrom(r http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	r := limitedRouter(3, time.Minute, middlewares.KeyByIP)

	for i := 0; i < 3; i++ {
		w := postFrom(r, "10.0.0.1:5555")

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, w.Code)
		}
	}

	w := postFrom(r, "10.0.0.1:5555")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429, body=%s", w.Code, w.Body.String())
	}

	if w.Header().Get("Retry-After") == "" {
		t.Error("429 must carry a Retry-After header")
	}

	if got := bodyCode(t, w); got != "rate_limited" {
		t.Errorf("got code %q, want rate_limited", got)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	r := limitedRouter(1, time.Minute, middlewares.KeyByIP)

	if w := postFrom(r, "10.0.0.1:5555"); w.Code != http.StatusOK {
		t.Fatalf("first client: got status %d", w.Code)
	}

	if w := postFrom(r, "10.0.0.1:5555"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client repeat: got status %d, want 429", w.Code)
	}

	// a different address has its own bucket
	if w := postFrom(r, "10.0.0.2:6666"); w.Code != http.StatusOK {
		t.Fatalf("second client: got status %d, want 200", w.Code)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	r := limitedRouter(1, 50*time.Millisecond, middlewares.KeyByIP)

	if w := postFrom(r, "10.0.0.1:5555"); w.Code != http.StatusOK {
		t.Fatalf("first: got status %d", w.Code)
	}

	if w := postFrom(r, "10.0.0.1:5555"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second: got status %d, want 429", w.Code)
	}

	time.Sleep(60 * time.Millisecond)

	if w := postFrom(r, "10.0.0.1:5555"); w.Code != http.StatusOK {
		t.Fatalf("after window: got status %d, want 200", w.Code)
	}
}
