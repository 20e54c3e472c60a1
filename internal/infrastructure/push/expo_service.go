package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider delivers one push message to one device token.
type Provider interface {
	SendPush(ctx context.Context, deviceToken, title, body string, data map[string]interface{}) (messageID string, err error)
}

// ExpoPushService delivers notifications through the Expo push API
// (the mobile client registers Expo tokens).
type ExpoPushService struct {
	endpoint string
	client   *http.Client
}

var _ Provider = (*ExpoPushService)(nil)

func NewExpoPushService(endpoint string) *ExpoPushService {
	return &ExpoPushService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type expoMessage struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type expoTicket struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type expoResponse struct {
	Data []expoTicket `json:"data"`
}

func (s *ExpoPushService) SendPush(ctx context.Context, deviceToken, title, body string, data map[string]interface{}) (string, error) {
	payload, err := json.Marshal([]expoMessage{{
		To:    deviceToken,
		Title: title,
		Body:  body,
		Data:  data,
	}})
	if err != nil {
		return "", fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("push endpoint returned %d: %s", resp.StatusCode, raw)
	}

	var parsed expoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode push response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return "", fmt.Errorf("push endpoint returned no tickets")
	}
	ticket := parsed.Data[0]
	if ticket.Status != "ok" {
		return "", fmt.Errorf("push rejected: %s", ticket.Message)
	}
	return ticket.ID, nil
}
