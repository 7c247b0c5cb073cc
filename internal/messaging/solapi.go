// Package messaging sends SMS and LMS messages through the Solapi API.
package messaging

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"admissions_crm_backend/platform/config"
	"admissions_crm_backend/platform/logger"
	"admissions_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// Message types. Korean carriers cap SMS at 90 bytes of EUC-KR-equivalent
// payload; longer texts must go out as LMS.
const (
	TypeSMS = "SMS"
	TypeLMS = "LMS"

	smsByteLimit = 90
)

// ErrNotConfigured is returned when Solapi credentials are absent. Message
// rows still record the attempt as FAILED so operators can see what happened.
var ErrNotConfigured = errors.New("solapi credentials not configured")

// Dispatch describes one accepted message.
type Dispatch struct {
	MessageID  string
	Type       string
	StatusCode string
}

// Sender is the outbound text message port used by the C-level lead flow.
type Sender interface {
	SendText(ctx context.Context, to, text string) (Dispatch, error)
}

// Client is the Solapi HTTP client.
type Client struct {
	apiKey    string
	apiSecret string
	sender    string
	baseURL   string
	http      *http.Client
	log       *logger.Logger
}

// NewClient creates a Solapi client from configuration.
func NewClient(cfg config.SolapiConfig, log *logger.Logger) *Client {
	return &Client{
		apiKey:    cfg.GetSolapiAPIKey(),
		apiSecret: cfg.GetSolapiAPISecret(),
		sender:    cfg.GetSolapiSenderPhone(),
		baseURL:   cfg.GetSolapiBaseURL(),
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

// TypeFor picks SMS or LMS for a message body. The limit applies to the UTF-8
// byte length, so roughly 30 Korean characters fit in an SMS.
func TypeFor(text string) string {
	if len(text) > smsByteLimit {
		return TypeLMS
	}
	return TypeSMS
}

type sendRequest struct {
	Message sendMessage `json:"message"`
}

type sendMessage struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type sendResponse struct {
	GroupID       string `json:"groupId"`
	MessageID     string `json:"messageId"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

// SendText sends one text message to a Korean mobile number. The recipient is
// reduced to bare digits as Solapi expects.
func (c *Client) SendText(ctx context.Context, to, text string) (Dispatch, error) {
	if c.apiKey == "" || c.apiSecret == "" || c.sender == "" {
		return Dispatch{}, ErrNotConfigured
	}

	recipient := phone.Digits(to)
	if recipient == "" {
		return Dispatch{}, fmt.Errorf("recipient %q has no digits", to)
	}
	if !phone.IsPlausibleKR(to) {
		c.log.Warn("recipient does not parse as a KR number, sending anyway", "recipient", to)
	}

	messageType := TypeFor(text)
	body, err := json.Marshal(sendRequest{Message: sendMessage{
		To:   recipient,
		From: phone.Digits(c.sender),
		Text: text,
		Type: messageType,
	}})
	if err != nil {
		return Dispatch{}, fmt.Errorf("marshal solapi request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages/v4/send", bytes.NewReader(body))
	if err != nil {
		return Dispatch{}, fmt.Errorf("build solapi request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authorizationHeader())

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.MessageDispatch(messageType, recipient, false, err.Error())
		return Dispatch{}, fmt.Errorf("solapi request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Dispatch{}, fmt.Errorf("read solapi response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := fmt.Sprintf("status %d: %s", resp.StatusCode, respBody)
		c.log.MessageDispatch(messageType, recipient, false, detail)
		return Dispatch{}, fmt.Errorf("solapi rejected message: %s", detail)
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Dispatch{}, fmt.Errorf("decode solapi response: %w", err)
	}

	c.log.MessageDispatch(messageType, recipient, true, parsed.StatusCode)
	return Dispatch{
		MessageID:  parsed.MessageID,
		Type:       messageType,
		StatusCode: parsed.StatusCode,
	}, nil
}

// authorizationHeader builds the Solapi HMAC-SHA256 header. The signature
// covers the concatenation of the ISO timestamp and a random salt.
func (c *Client) authorizationHeader() string {
	date := time.Now().UTC().Format(time.RFC3339)
	salt := uuid.NewString()

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(date + salt))
	signature := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s",
		c.apiKey, date, salt, signature)
}

var _ Sender = (*Client)(nil)
