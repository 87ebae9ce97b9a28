package v1

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mietwerk/billing-core/internal/config"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/mietwerk/billing-core/internal/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

// fakePublisher captures published events instead of queueing them
type fakePublisher struct {
	events   []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, eventID string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, eventID)
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

// signPayload computes a Stripe-Signature header the verifier accepts
func signPayload(secret string, payload []byte) string {
	timestamp := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func newTestRouter(t *testing.T, webhookSecret string, publisher *fakePublisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.GetDefaultConfig()
	cfg.Stripe.WebhookSecret = webhookSecret

	log := logger.NewNopLogger()
	handler := NewWebhookHandler(stripe.NewClient(cfg, log), publisher, log)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	router.POST("/v1/webhooks/stripe", handler.HandleStripeEvent)
	router.OPTIONS("/v1/webhooks/stripe", handler.HandlePreflight)
	return router
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", strings.NewReader(string(payload)))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookAcceptsSignedEvent(t *testing.T) {
	publisher := &fakePublisher{}
	router := newTestRouter(t, testWebhookSecret, publisher)

	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)
	w := postWebhook(router, payload, signPayload(testWebhookSecret, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "evt_1", publisher.events[0])
	// The exact raw bytes must be forwarded, not a re-serialization
	assert.Equal(t, payload, publisher.payloads[0])
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	publisher := &fakePublisher{}
	router := newTestRouter(t, testWebhookSecret, publisher)

	w := postWebhook(router, []byte(`{}`), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, publisher.events)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	publisher := &fakePublisher{}
	router := newTestRouter(t, testWebhookSecret, publisher)

	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	w := postWebhook(router, payload, signPayload("whsec_wrong_secret", payload))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
	assert.Empty(t, publisher.events)
}

func TestWebhookRejectsTamperedPayload(t *testing.T) {
	publisher := &fakePublisher{}
	router := newTestRouter(t, testWebhookSecret, publisher)

	signature := signPayload(testWebhookSecret, []byte(`{"id":"evt_1"}`))
	w := postWebhook(router, []byte(`{"id":"evt_2"}`), signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, publisher.events)
}

func TestWebhookFailsClosedWithoutSecret(t *testing.T) {
	publisher := &fakePublisher{}
	router := newTestRouter(t, "", publisher)

	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	w := postWebhook(router, payload, signPayload(testWebhookSecret, payload))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, publisher.events)
}

func TestWebhookAnswersPreflight(t *testing.T) {
	router := newTestRouter(t, testWebhookSecret, &fakePublisher{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/webhooks/stripe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebhookRejectsNonPost(t *testing.T) {
	router := newTestRouter(t, testWebhookSecret, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/v1/webhooks/stripe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
