package tally

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/platform/httpkit"
	"admissions_crm_backend/platform/logger"
	platformvalidator "admissions_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type testTallyConfig struct {
	secret  string
	cSecret string
}

func (c testTallyConfig) GetTallyWebhookSecret() string  { return c.secret }
func (c testTallyConfig) GetTallyCWebhookSecret() string { return c.cSecret }

func newTestServer(t *testing.T, leadStore *fakeStore, cleadStore *fakeStore, cfg testTallyConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("test")
	module := NewModule(leadStore, cleadStore, cfg, &fakeBus{}, platformvalidator.New(), log)

	engine := gin.New()
	module.RegisterRoutes(&apphttp.RouterContext{
		Engine:             engine,
		API:                engine.Group("/api"),
		WebhookRateLimiter: httpkit.NewIPRateLimiter(rate.Limit(1000), 1000, log),
	})
	return engine
}

const validBody = `{
	"eventId": "evt-1",
	"eventType": "FORM_RESPONSE",
	"createdAt": "2026-03-01T09:00:00.000Z",
	"data": {
		"responseId": "resp-1",
		"submissionId": "sub-1",
		"formId": "form-1",
		"createdAt": "2026-03-01T09:00:00.000Z",
		"fields": [
			{"key": "question_g01o6D", "label": "학부모 성함", "type": "INPUT_TEXT", "value": "김학부모"},
			{"key": "question_y6Ra5X", "label": "전화번호", "type": "INPUT_PHONE_NUMBER", "value": "01012345678"}
		]
	}
}`

func postWebhook(engine *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestWebhookCreatesLead(t *testing.T) {
	leadStore := &fakeStore{upsertID: uuid.New()}
	engine := newTestServer(t, leadStore, &fakeStore{}, testTallyConfig{})

	w := postWebhook(engine, "/api/tally/webhook", validBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var resp WebhookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.IsReturning == nil || *resp.IsReturning {
		t.Fatalf("isReturning = %v", resp.IsReturning)
	}
	if len(leadStore.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(leadStore.upserted))
	}
	// The raw body is stored verbatim for audit.
	if string(leadStore.upserted[0].RawPayload) != validBody {
		t.Fatal("raw payload must be the undecoded request body")
	}
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	leadStore := &fakeStore{}
	engine := newTestServer(t, leadStore, &fakeStore{}, testTallyConfig{secret: "s3cret"})

	w := postWebhook(engine, "/api/tally/webhook", validBody, map[string]string{
		"Authorization": "Bearer wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if len(leadStore.upserted) != 0 || leadStore.findCalls != 0 {
		t.Fatal("store must not be touched on auth failure")
	}
}

func TestWebhookAcceptsConfiguredSecret(t *testing.T) {
	leadStore := &fakeStore{upsertID: uuid.New()}
	engine := newTestServer(t, leadStore, &fakeStore{}, testTallyConfig{secret: "s3cret"})

	w := postWebhook(engine, "/api/tally/webhook", validBody, map[string]string{
		"X-Tally-Signature": "s3cret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	engine := newTestServer(t, &fakeStore{}, &fakeStore{}, testTallyConfig{})

	w := postWebhook(engine, "/api/tally/webhook", "{not json", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestWebhookReportsViolationPaths(t *testing.T) {
	engine := newTestServer(t, &fakeStore{}, &fakeStore{}, testTallyConfig{})

	// submissionId is missing.
	body := `{
		"eventId": "evt-1",
		"eventType": "FORM_RESPONSE",
		"createdAt": "2026-03-01T09:00:00.000Z",
		"data": {
			"responseId": "resp-1",
			"formId": "form-1",
			"createdAt": "2026-03-01T09:00:00.000Z",
			"fields": [
				{"key": "question_g01o6D", "label": "이름", "type": "INPUT_TEXT", "value": "김학부모"}
			]
		}
	}`
	w := postWebhook(engine, "/api/tally/webhook", body, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "data.submissionId") {
		t.Fatalf("expected violation path in body, got %s", w.Body.String())
	}
}

func TestWebhookDuplicateIsSuccess(t *testing.T) {
	leadStore := &fakeStore{upsertErr: ErrDuplicateSubmission}
	engine := newTestServer(t, leadStore, &fakeStore{}, testTallyConfig{})

	w := postWebhook(engine, "/api/tally/webhook", validBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var resp WebhookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Message != "Duplicate submission ignored" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestCWebhookOmitsReturningFlag(t *testing.T) {
	cleadStore := &fakeStore{upsertID: uuid.New()}
	engine := newTestServer(t, &fakeStore{}, cleadStore, testTallyConfig{})

	body := `{
		"eventId": "evt-2",
		"eventType": "FORM_RESPONSE",
		"createdAt": "2026-03-01T09:00:00.000Z",
		"data": {
			"responseId": "resp-2",
			"submissionId": "sub-2",
			"formId": "form-2",
			"createdAt": "2026-03-01T09:00:00.000Z",
			"fields": [
				{"key": "q1", "label": "성함", "type": "INPUT_TEXT", "value": "박대표"},
				{"key": "q2", "label": "연락처", "type": "INPUT_PHONE_NUMBER", "value": "01098765432"}
			]
		}
	}`
	w := postWebhook(engine, "/api/tally/c-webhook", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "isReturning") {
		t.Fatalf("c-webhook response must not carry isReturning: %s", w.Body.String())
	}
}

func TestWebhookLiveness(t *testing.T) {
	engine := newTestServer(t, &fakeStore{}, &fakeStore{}, testTallyConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/tally/webhook", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/api/tally/webhook") {
		t.Fatalf("body = %s", w.Body.String())
	}
}
