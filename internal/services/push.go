package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Push delivery is best-effort: a failed send is logged and swallowed, the
// persisted notification row remains the source of truth.

type NotificationPayload struct {
	Title string
	Body  string
	Type  string
	Site  string
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data"`
}

type PushSender struct {
	serverKey string
	endpoint  string
	client    *http.Client
	log       *zap.Logger
}

// NewPushSender builds a sender for the FCM legacy HTTP endpoint. An empty
// server key yields a disabled sender whose sends are no-ops.
func NewPushSender(serverKey, endpoint string, log *zap.Logger) *PushSender {
	return &PushSender{
		serverKey: serverKey,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

// Enabled reports whether a server key is configured.
func (p *PushSender) Enabled() bool {
	return p.serverKey != ""
}

// SendToToken attempts delivery of one payload to one device token.
func (p *PushSender) SendToToken(token string, payload NotificationPayload) error {
	if !p.Enabled() {
		p.log.Debug("push disabled, skipping send", zap.String("type", payload.Type))
		return nil
	}

	message := fcmMessage{
		To: token,
		Notification: fcmNotification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: map[string]string{
			"type":      payload.Type,
			"timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
		},
	}

	if payload.Site != "" {
		message.Data["site"] = payload.Site
	}

	body, err := json.Marshal(message)

	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.endpoint, bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.serverKey)

	resp, err := p.client.Do(req)

	if err != nil {
		return fmt.Errorf("send push request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToTokens delivers one payload to many tokens. Failures are logged per
// token and do not stop the batch.
func (p *PushSender) SendToTokens(tokens []string, payload NotificationPayload) {
	if len(tokens) == 0 {
		return
	}

	for _, token := range tokens {
		if err := p.SendToToken(token, payload); err != nil {
			p.log.Warn("push delivery failed",
				zap.String("type", payload.Type),
				zap.Error(err))
		}
	}
}
