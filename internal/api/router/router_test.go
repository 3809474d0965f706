package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sayhiafrica/ticketing-platform/internal/catalog"
	"github.com/sayhiafrica/ticketing-platform/internal/http/handlers"
	"github.com/sayhiafrica/ticketing-platform/internal/orders"
)

type staticEvents struct{}

func (staticEvents) ListUpcoming(context.Context) ([]catalog.Event, error) {
	return []catalog.Event{{ID: "ev-1", Title: "Summer Fest"}}, nil
}

type staticOrders struct{}

func (staticOrders) ListRecent(context.Context, int) ([]orders.Order, error) { return nil, nil }
func (staticOrders) GetStats(context.Context) (*orders.Stats, error) {
	return &orders.Stats{}, nil
}

func newTestRouter(secret string) http.Handler {
	return New(&Config{
		Admin: handlers.NewAdminHandler(handlers.AdminConfig{
			Events: staticEvents{},
			Orders: staticOrders{},
		}),
		AdminAuthSecret: secret,
	})
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter("secret").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health body: %s", rec.Body.String())
	}
}

func TestAdminRoutesRequireJWT(t *testing.T) {
	router := newTestRouter("secret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/events", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Summer Fest") {
		t.Fatalf("unexpected admin body: %s", rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter("secret").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
