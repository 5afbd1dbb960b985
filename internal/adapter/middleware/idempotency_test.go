package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	testActorID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	testReqID   = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// actorStub plays the part of JWTAuth: it puts the authenticated actor on
// the context. Empty id simulates an unauthenticated request slipping past.
func actorStub(actorID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if actorID != "" {
				c.Set(CtxActorID, actorID)
			}
			return next(c)
		}
	}
}

func setupEcho(rdb *redis.Client, actorID string, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(actorStub(actorID), Idempotency(rdb, ttl, discardLogger()))
	e.POST("/loans", handler)
	e.GET("/loans", handler) // non-mutating bypass
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func validHeaders() map[string]string {
	return map[string]string{
		"X-Request-Id": testReqID,
		"X-Request-At": time.Now().UTC().Format(time.RFC3339),
	}
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEcho(rdb, testActorID, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/loans", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEcho(rdb, testActorID, 30*time.Second, okCreatedHandler)

	cases := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing X-Request-Id", map[string]string{
			"X-Request-At": time.Now().UTC().Format(time.RFC3339),
		}},
		{"invalid X-Request-Id", map[string]string{
			"X-Request-Id": "NOT-VALID",
			"X-Request-At": time.Now().UTC().Format(time.RFC3339),
		}},
		{"invalid X-Request-At", map[string]string{
			"X-Request-Id": testReqID,
			"X-Request-At": "not-a-time",
		}},
		{"skewed X-Request-At", map[string]string{
			"X-Request-Id": testReqID,
			"X-Request-At": time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"x": 1}), tc.hdr)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func Test_MissingActor_Unauthorized(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	// No actor on the context: the middleware must refuse rather than
	// key idempotency entries off an empty actor id.
	e := setupEcho(rdb, "", 30*time.Second, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"x": 1}), validHeaders())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEcho(rdb, testActorID, 2*time.Minute, okCreatedHandler)

	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]any{"amount": 250000}), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// Same headers & body replay the stored response without re-running the handler.
	rec2 := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]any{"amount": 250000}), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEcho(rdb, testActorID, 2*time.Minute, okCreatedHandler)

	body := []byte(`{"x":1}`)
	key := buildKey(http.MethodPost, "/loans", testActorID, testReqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, "/loans", bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEcho(rdb, testActorID, 2*time.Minute, okCreatedHandler)

	key := buildKey(http.MethodPost, "/loans", testActorID, testReqID)
	final := idempEntry{
		InProgress:  false,
		Code:        http.StatusCreated,
		Body:        []byte(`{"ok":true}`),
		BodySHA256:  bodyHash([]byte(`{"x":1}`)),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, "/loans", bytes.NewReader([]byte(`{"x":2}`)), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_ActorsDoNotShareKeys(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()

	// Same request id from two different actors must not collide.
	e1 := setupEcho(rdb, testActorID, 2*time.Minute, okCreatedHandler)
	e2 := setupEcho(rdb, strings.Repeat("c", 32), 2*time.Minute, okCreatedHandler)

	rec1 := doReq(t, e1, http.MethodPost, "/loans", bytes.NewReader([]byte(`{"x":1}`)), validHeaders())
	rec2 := doReq(t, e2, http.MethodPost, "/loans", bytes.NewReader([]byte(`{"x":2}`)), validHeaders())
	if rec1.Code != http.StatusCreated || rec2.Code != http.StatusCreated {
		t.Fatalf("distinct actors should both succeed: %d, %d", rec1.Code, rec2.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, testActorID, time.Minute, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, "/loans", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
