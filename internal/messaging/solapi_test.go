package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"admissions_crm_backend/platform/logger"
)

type staticConfig struct {
	apiKey, apiSecret, sender, baseURL string
}

func (c staticConfig) GetSolapiAPIKey() string      { return c.apiKey }
func (c staticConfig) GetSolapiAPISecret() string   { return c.apiSecret }
func (c staticConfig) GetSolapiSenderPhone() string { return c.sender }
func (c staticConfig) GetSolapiBaseURL() string     { return c.baseURL }

func TestTypeFor(t *testing.T) {
	if got := TypeFor(strings.Repeat("a", 90)); got != TypeSMS {
		t.Fatalf("90 ascii bytes = %s", got)
	}
	if got := TypeFor(strings.Repeat("a", 91)); got != TypeLMS {
		t.Fatalf("91 ascii bytes = %s", got)
	}
	// Hangul is 3 bytes per rune in UTF-8: 30 characters fit, 31 do not.
	if got := TypeFor(strings.Repeat("가", 30)); got != TypeSMS {
		t.Fatalf("30 hangul = %s", got)
	}
	if got := TypeFor(strings.Repeat("가", 31)); got != TypeLMS {
		t.Fatalf("31 hangul = %s", got)
	}
}

func TestSendTextNotConfigured(t *testing.T) {
	client := NewClient(staticConfig{}, logger.New("test"))

	_, err := client.SendText(context.Background(), "010-1234-5678", "hello")
	if err != ErrNotConfigured {
		t.Fatalf("err = %v", err)
	}
}

func TestSendText(t *testing.T) {
	var gotAuth string
	var gotBody sendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages/v4/send" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"messageId":  "msg-1",
			"statusCode": "2000",
		})
	}))
	defer srv.Close()

	client := NewClient(staticConfig{
		apiKey:    "key",
		apiSecret: "secret",
		sender:    "02-123-4567",
		baseURL:   srv.URL,
	}, logger.New("test"))

	dispatch, err := client.SendText(context.Background(), "010-1234-5678", "상담 안내드립니다")
	if err != nil {
		t.Fatal(err)
	}

	if dispatch.MessageID != "msg-1" || dispatch.Type != TypeSMS {
		t.Fatalf("dispatch = %+v", dispatch)
	}
	if !strings.HasPrefix(gotAuth, "HMAC-SHA256 apiKey=key, date=") {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if !strings.Contains(gotAuth, "signature=") {
		t.Fatalf("authorization missing signature: %q", gotAuth)
	}
	// Recipient and sender are reduced to bare digits.
	if gotBody.Message.To != "01012345678" {
		t.Fatalf("to = %q", gotBody.Message.To)
	}
	if gotBody.Message.From != "021234567" {
		t.Fatalf("from = %q", gotBody.Message.From)
	}
	if gotBody.Message.Type != TypeSMS {
		t.Fatalf("type = %q", gotBody.Message.Type)
	}
}

func TestSendTextProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorCode":"ValidationError"}`))
	}))
	defer srv.Close()

	client := NewClient(staticConfig{
		apiKey:    "key",
		apiSecret: "secret",
		sender:    "0212345678",
		baseURL:   srv.URL,
	}, logger.New("test"))

	if _, err := client.SendText(context.Background(), "010-1234-5678", "hi"); err == nil {
		t.Fatal("expected error")
	}
}
