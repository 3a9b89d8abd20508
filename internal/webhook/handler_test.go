package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealflow_backend/internal/scheduler"
	"dealflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type fakeConfig struct {
	secret string
}

func (f fakeConfig) GetClickUpWebhookSecret() string { return f.secret }

type fakeEnqueuer struct {
	calls    int
	triggers []string
	err      error
}

func (f *fakeEnqueuer) EnqueueSync(_ context.Context, trigger string) error {
	f.calls++
	f.triggers = append(f.triggers, trigger)
	return f.err
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestRouter(secret string, enqueuer *fakeEnqueuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewHandler(fakeConfig{secret: secret}, enqueuer, logger.New("development"))
	handler.RegisterRoutes(engine.Group("/webhooks"))
	return engine
}

func deliver(t *testing.T, engine *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clickup", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestReceiveAcceptsSignedDelivery(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter("hunter2", enqueuer)

	body := []byte(`{"event":"taskStatusUpdated","task_id":"abc123"}`)
	rec := deliver(t, engine, body, sign("hunter2", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if enqueuer.calls != 1 {
		t.Fatalf("enqueue calls = %d, want 1", enqueuer.calls)
	}
	if enqueuer.triggers[0] != scheduler.TriggerWebhook {
		t.Fatalf("trigger = %q, want %q", enqueuer.triggers[0], scheduler.TriggerWebhook)
	}
}

func TestReceiveRejectsBadSignature(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter("hunter2", enqueuer)

	body := []byte(`{"event":"taskStatusUpdated"}`)
	rec := deliver(t, engine, body, sign("wrong-secret", body))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if enqueuer.calls != 0 {
		t.Fatalf("enqueue calls = %d, want 0", enqueuer.calls)
	}
}

func TestReceiveRejectsMissingSignature(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter("hunter2", enqueuer)

	rec := deliver(t, engine, []byte(`{"event":"taskCreated"}`), "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestReceiveRejectsAllWithoutSecret(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter("", enqueuer)

	// Without a configured secret even a matching empty-key HMAC is refused.
	body := []byte(`{"event":"taskCreated"}`)
	rec := deliver(t, engine, body, sign("", body))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if enqueuer.calls != 0 {
		t.Fatalf("enqueue calls = %d, want 0", enqueuer.calls)
	}
}

func TestReceiveRejectsMalformedPayload(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter("hunter2", enqueuer)

	body := []byte(`{not json`)
	rec := deliver(t, engine, body, sign("hunter2", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if enqueuer.calls != 0 {
		t.Fatalf("enqueue calls = %d, want 0", enqueuer.calls)
	}
}
