package procedure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func resolverReturning(id string, ok bool) Resolver {
	return ResolverFunc(func(*http.Request) (string, bool) { return id, ok })
}

func TestProtect_NoSessionNeverRunsHandler(t *testing.T) {
	calls := 0
	err := Protect(context.Background(), "", false, func(ctx context.Context) error {
		calls++
		return nil
	})

	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected handler not to run, ran %d times", calls)
	}
}

func TestProtect_BindsAccountAndPropagatesError(t *testing.T) {
	handlerErr := errors.New("note not found")

	err := Protect(context.Background(), "acc-1", true, func(ctx context.Context) error {
		id, ok := AccountIDFromContext(ctx)
		if !ok || id != "acc-1" {
			t.Errorf("Expected acc-1 in context, got %q", id)
		}
		return handlerErr
	})

	if err != handlerErr {
		t.Errorf("Expected handler error to pass through unchanged, got %v", err)
	}
}

func TestProtected_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	calls := 0
	r := gin.New()
	r.Use(Protected(resolverReturning("", false)))
	r.POST("/api/notes", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/notes", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if calls != 0 {
		t.Errorf("Expected handler not to run, ran %d times", calls)
	}

	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Code != KindUnauthorized || body.Success {
		t.Errorf("Expected UNAUTHORIZED, got %+v", body)
	}
}

func TestProtected_InjectsAccountID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Protected(resolverReturning("acc-42", true)))
	r.GET("/api/me", func(c *gin.Context) {
		fromGin, _ := AccountID(c)
		fromCtx, _ := AccountIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"gin": fromGin, "ctx": fromCtx})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["gin"] != "acc-42" || response["ctx"] != "acc-42" {
		t.Errorf("Expected acc-42 in both contexts, got %v", response)
	}
}

func TestProtected_HandlerErrorPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Protected(resolverReturning("acc-1", true)))
	r.DELETE("/api/notes/:id", func(c *gin.Context) {
		Fail(c, KindForbidden, "not your note")
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/notes/n1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestAbort_HidesUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Abort(c, errors.New("pq: password authentication failed"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Code != KindInternal || body.Error != ErrInternal.Message {
		t.Errorf("Expected generic internal error, got %+v", body)
	}
	if len(c.Errors) != 1 {
		t.Errorf("Expected the cause to be recorded on the context, got %d errors", len(c.Errors))
	}
}

func TestStatus(t *testing.T) {
	tests := map[Kind]int{
		KindUnauthorized:       http.StatusUnauthorized,
		KindForbidden:          http.StatusForbidden,
		KindTooManyRequests:    http.StatusTooManyRequests,
		KindServiceUnavailable: http.StatusServiceUnavailable,
		Kind("SOMETHING_ELSE"): http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := Status(kind); got != want {
			t.Errorf("Status(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := New(KindUnauthorized, "session expired")
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("Expected errors.Is to match on kind")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("Expected different kinds not to match")
	}
}
