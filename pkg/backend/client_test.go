package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/echobridge/relay-backend/config"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(config.BackendConfig{
		URL:     url,
		APIKey:  "api-key",
		Timeout: timeout,
	})
}

func TestClient_SendMessage_Accepted(t *testing.T) {
	c := qt.New(t)

	var gotKey string
	var gotBody messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/message" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotKey = r.Header.Get("x-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 10*time.Second)
	err := client.SendMessage(context.Background(), "user-token", MessageTypeVoice, Payload{
		AudioURL: "https://blob.example.com/voice-messages/x.mp3",
	})
	c.Assert(err, qt.IsNil)

	c.Check(gotKey, qt.Equals, "api-key")
	c.Check(gotBody.UserAccessToken, qt.Equals, "user-token")
	c.Check(gotBody.MessageType, qt.Equals, MessageTypeVoice)
	c.Check(gotBody.Payload.AudioURL, qt.Equals, "https://blob.example.com/voice-messages/x.mp3")
	c.Check(gotBody.Payload.Text, qt.Equals, "")
}

func TestClient_SendMessage_Rejected(t *testing.T) {
	c := qt.New(t)

	testcases := []struct {
		name   string
		status int
	}{
		{name: "nok - server error", status: http.StatusInternalServerError},
		{name: "nok - unauthorized", status: http.StatusUnauthorized},
		// 200 is not the contract; only 202 counts as accepted.
		{name: "nok - plain ok", status: http.StatusOK},
	}

	for _, tc := range testcases {
		c.Run(tc.name, func(c *qt.C) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, 10*time.Second)
			err := client.SendMessage(context.Background(), "user-token", MessageTypeText, Payload{Text: "hi"})

			c.Assert(errors.Is(err, errorsx.ErrNotifyRejected), qt.IsTrue)
			c.Check(errors.Is(err, errorsx.ErrNotifyTimeout), qt.IsFalse)
		})
	}
}

func TestClient_SendMessage_Timeout(t *testing.T) {
	c := qt.New(t)

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()
	defer close(block)

	client := newTestClient(srv.URL, 50*time.Millisecond)
	err := client.SendMessage(context.Background(), "user-token", MessageTypeText, Payload{Text: "hi"})

	c.Assert(errors.Is(err, errorsx.ErrNotifyTimeout), qt.IsTrue)
}
