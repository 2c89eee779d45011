package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museobook/museum-ticketing-platform/internal/museums"
	"github.com/museobook/museum-ticketing-platform/internal/tickets"
)

type fakeMuseumLister struct{ summaries []museums.Summary }

func (f *fakeMuseumLister) ListSummaries(context.Context) ([]museums.Summary, error) {
	return f.summaries, nil
}

type fakeTicketLister struct{ list []tickets.Ticket }

func (f *fakeTicketLister) ListByUser(context.Context, string) ([]tickets.Ticket, error) {
	return f.list, nil
}

const testSecret = "test-secret"

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestRouter() http.Handler {
	return New(&Config{
		MuseumsHandler: museums.NewHandler(&fakeMuseumLister{summaries: []museums.Summary{{Name: "City Museum"}}}, nil),
		TicketsHandler: tickets.NewHandler(&fakeTicketLister{}, nil),
		UserJWTSecret:  testSecret,
	})
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMuseumsIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/museums", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "City Museum")
}

func TestTicketsRequireAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTicketsWithBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tickets"`)
}

func TestUnknownRouteIs404(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
