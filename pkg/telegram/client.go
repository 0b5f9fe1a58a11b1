package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/echobridge/relay-backend/config"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
)

// ClientI is the interface for the chat platform's bot API.
type ClientI interface {
	// GetFilePath resolves an opaque file reference to a fetchable path on
	// the platform's file host.
	GetFilePath(ctx context.Context, fileID string) (string, error)
	// DownloadFile streams the file at the resolved path into destPath.
	DownloadFile(ctx context.Context, filePath string, destPath string) error
	// SendMessage sends a Markdown text message to a chat.
	SendMessage(ctx context.Context, chatID string, text string) error
}

// Client talks to the bot API over HTTP. The bot token is embedded in the
// request URLs, as the platform requires.
type Client struct {
	apiHost    string
	fileHost   string
	botToken   string
	httpClient *http.Client
}

// NewClient creates a bot API client from the telegram configuration.
func NewClient(cfg config.TelegramConfig) *Client {
	return &Client{
		apiHost:  cfg.APIHost,
		fileHost: cfg.FileHost,
		botToken: cfg.BotToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type getFileResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// GetFilePath calls the getFile endpoint and returns the platform-relative
// path of the file.
func (c *Client) GetFilePath(ctx context.Context, fileID string) (string, error) {
	reqURL := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", c.apiHost, c.botToken, url.QueryEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errorsx.ErrLocationLookup, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errorsx.ErrLocationLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: getFile returned status %d", errorsx.ErrLocationLookup, resp.StatusCode)
	}

	var body getFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", errorsx.ErrLocationLookup, err)
	}
	if !body.OK || body.Result.FilePath == "" {
		return "", fmt.Errorf("%w: getFile response carries no file path", errorsx.ErrLocationLookup)
	}

	return body.Result.FilePath, nil
}

// DownloadFile streams the remote payload into destPath. The body is copied
// incrementally so large voice notes never sit in memory as a whole.
func (c *Client) DownloadFile(ctx context.Context, filePath string, destPath string) error {
	reqURL := fmt.Sprintf("%s/bot%s/%s", c.fileHost, c.botToken, filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", errorsx.ErrDownload, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errorsx.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: file host returned status %d", errorsx.ErrDownload, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errorsx.ErrDownload, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: %v", errorsx.ErrDownload, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", errorsx.ErrDownload, err)
	}

	return nil
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts a Markdown message to the chat. Callers that treat
// delivery as best-effort are expected to log and swallow the returned
// error.
func (c *Client) SendMessage(ctx context.Context, chatID string, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", c.apiHost, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMessage returned status %d", resp.StatusCode)
	}

	return nil
}
