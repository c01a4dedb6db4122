package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-booking/internal/booking"
	"clinic-booking/internal/calendar"
	"clinic-booking/internal/gateway"
	"clinic-booking/internal/handler"
	"clinic-booking/internal/metrics"
	"clinic-booking/internal/middleware"
	"clinic-booking/internal/session"
	"clinic-booking/internal/store"
)

type calendarFunc func(ctx context.Context) (string, error)

func (f calendarFunc) CreateEvent(ctx context.Context, _ time.Time, _ string) (string, error) {
	return f(ctx)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, cal calendar.Adapter, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()
	st, err := store.New(store.Options{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	log := zap.NewNop()
	gate := session.NewGate(st, session.NewMemoryStore(), "gw-secret", time.Hour, log)
	svc := booking.New(gate, st, booking.Options{Calendar: cal, Log: log})
	h := handler.New(st, gate, svc, log)

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	g := gateway.New(h, gateway.Options{SessionTTL: time.Hour, Limiter: limiter, Log: log})
	return g.Router(reg)
}

func do(r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == gateway.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var creds = map[string]string{"email": "doc@x.com", "password": "Passw0rd!"}

func TestCookieFlow(t *testing.T) {
	r := newRouter(t, calendarFunc(func(context.Context) (string, error) { return "evt-1", nil }), nil)

	rec := do(r, http.MethodPost, "/api/register", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/register", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodPost, "/api/login", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	sid := sessionCookie(t, rec)
	assert.True(t, sid.HttpOnly)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(r, http.MethodGet, "/api/user-info", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "doc@x.com", user["email"])

	date := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	rec = do(r, http.MethodPost, "/api/appointments", map[string]any{"doctorId": 1, "date": date}, sid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := decode(t, rec)["appointment"].(map[string]any)
	assert.Equal(t, "synced", appt["syncStatus"])

	rec = do(r, http.MethodPost, "/api/appointments", map[string]any{"doctorId": 1, "date": date}, sid)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodGet, "/api/doctors/1/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["appointments"], 1)

	rec = do(r, http.MethodPost, "/api/logout", nil, sid)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, http.MethodGet, "/api/user-info", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["user"])

	rec = do(r, http.MethodPost, "/api/appointments", map[string]any{"doctorId": 1, "date": date}, sid)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerHeader(t *testing.T) {
	r := newRouter(t, nil, nil)
	do(r, http.MethodPost, "/api/register", creds)
	rec := do(r, http.MethodPost, "/api/login", creds)
	tok := decode(t, rec)["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/user-info", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode(t, rec)["user"])
}

func TestCalendarDown(t *testing.T) {
	r := newRouter(t, calendarFunc(func(context.Context) (string, error) { return "", errors.New("down") }), nil)
	do(r, http.MethodPost, "/api/register", creds)
	sid := sessionCookie(t, do(r, http.MethodPost, "/api/login", creds))

	date := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	rec := do(r, http.MethodPost, "/api/appointments", map[string]any{"doctorId": 1, "date": date}, sid)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decode(t, rec)
	appt := body["appointment"].(map[string]any)
	assert.Equal(t, "failed", appt["syncStatus"])
	assert.Contains(t, body["error"], "was booked")

	rec = do(r, http.MethodPost, "/api/appointments/1/sync", nil, sid)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBadRequests(t *testing.T) {
	r := newRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/api/register", map[string]string{"email": "nope", "password": "Passw0rd!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/api/doctors/abc/appointments", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/api/doctors/9/appointments", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPost, "/api/login", map[string]string{"email": "ghost@x.com", "password": "Passw0rd!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRoutesRateLimited(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2)
	defer rl.Close()
	r := newRouter(t, nil, rl)

	for i := 0; i < 2; i++ {
		rec := do(r, http.MethodPost, "/api/login", creds)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := do(r, http.MethodPost, "/api/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// other routes are not limited
	rec = do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t, nil, nil)
	do(r, http.MethodGet, "/healthz", nil)

	rec := do(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking_http_requests_total")
}

func TestHTTPStatus(t *testing.T) {
	tests := map[codes.Code]int{
		codes.InvalidArgument:   400,
		codes.Unauthenticated:   401,
		codes.NotFound:          404,
		codes.AlreadyExists:     409,
		codes.ResourceExhausted: 429,
		codes.Internal:          500,
		codes.Unavailable:       503,
	}
	for c, want := range tests {
		assert.Equal(t, want, gateway.HTTPStatus(status.Error(c, "x")), c.String())
	}
}
