package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/echobridge/relay-backend/config"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
)

// MessageType discriminates the payload shape of a backend submission.
type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeVoice MessageType = "VOICE"
)

// Payload carries the message content. Text is set for TEXT submissions,
// AudioURL for VOICE submissions.
type Payload struct {
	Text     string `json:"text,omitempty"`
	AudioURL string `json:"audioUrl,omitempty"`
}

type messageRequest struct {
	UserAccessToken string      `json:"userAccessToken"`
	MessageType     MessageType `json:"messageType"`
	Payload         Payload     `json:"payload"`
}

// ClientI is the interface for the skill backend submission contract.
type ClientI interface {
	// SendMessage submits one message on behalf of the user identified by
	// accessToken. The token passes through opaquely.
	SendMessage(ctx context.Context, accessToken string, messageType MessageType, payload Payload) error
}

// Client submits messages to the skill backend over an API-key
// authenticated HTTP contract. The backend acknowledges accepted messages
// with HTTP 202.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a backend client with the configured bounded timeout.
func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendMessage issues one authenticated submission. Timeouts and transport
// failures map to ErrNotifyTimeout; any status other than 202 maps to
// ErrNotifyRejected.
func (c *Client) SendMessage(ctx context.Context, accessToken string, messageType MessageType, payload Payload) error {
	body, err := json.Marshal(messageRequest{
		UserAccessToken: accessToken,
		MessageType:     messageType,
		Payload:         payload,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errorsx.ErrNotifyRejected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/message", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", errorsx.ErrNotifyRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return fmt.Errorf("%w: %v", errorsx.ErrNotifyTimeout, err)
		}
		return fmt.Errorf("%w: %v", errorsx.ErrNotifyRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: status %d", errorsx.ErrNotifyRejected, resp.StatusCode)
	}

	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
