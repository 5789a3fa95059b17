package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemagic/ticketing/internal/clock"
	"github.com/cinemagic/ticketing/internal/service"
)

// The validation paths below fail before the checkout service touches
// storage, so the handler can run against a service with no store.
func newPurchaseTestHandler() *PurchaseHandler {
	return NewPurchaseHandler(service.NewCheckoutService(nil, clock.NewSystem()))
}

func doPurchase(t *testing.T, body string, header map[string]string, userID any) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/purchases", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	require.NoError(t, newPurchaseTestHandler().Create(c))
	return rec
}

func TestPurchaseRequiresAuthentication(t *testing.T) {
	rec := doPurchase(t, `{}`, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPurchaseRejectsMalformedBody(t *testing.T) {
	rec := doPurchase(t, `{not json`, nil, uint64(7))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseRequiresIdempotencyKey(t *testing.T) {
	body := `{"items":[{"kind":"seat","showtime_id":1,"seat_number":2}],"total":12.5}`
	rec := doPurchase(t, body, nil, uint64(7))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "idempotency key")
}

func TestPurchaseRejectsForeignUserID(t *testing.T) {
	body := `{"user_id":8,"idempotency_key":"k","items":[{"kind":"seat","showtime_id":1,"seat_number":2}],"total":12.5}`
	rec := doPurchase(t, body, nil, uint64(7))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPurchaseRejectsUnknownItemKind(t *testing.T) {
	body := `{"idempotency_key":"k","items":[{"kind":"voucher"}],"total":0}`
	rec := doPurchase(t, body, nil, uint64(7))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid line item")
}

func TestPurchaseAcceptsKeyFromHeader(t *testing.T) {
	// The malformed item still fails, but past the key check: the
	// header supplied the idempotency key the body omitted.
	body := `{"items":[{"kind":"voucher"}],"total":0}`
	rec := doPurchase(t, body, map[string]string{"X-Idempotency-Key": "hdr-key"}, uint64(7))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid line item")
	assert.NotContains(t, rec.Body.String(), "idempotency key")
}
