package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_BurstExceeded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 1)
	t.Cleanup(rl.Stop)

	router := gin.New()
	router.GET("/x", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("Expected the first request to pass. Got: %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 once the burst is spent. Got: %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header on the limited response")
	}
}

func TestRateLimiter_StopReleasesCleanup(t *testing.T) {
	rl := NewRateLimiter(120, 30)

	finished := make(chan struct{})
	go func() {
		rl.Stop()
		rl.Stop() // second call must not panic or block
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Expected Stop to return once the cleanup goroutine exited")
	}
}
