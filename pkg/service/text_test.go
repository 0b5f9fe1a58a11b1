package service

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/echobridge/relay-backend/pkg/backend"

	errorsx "github.com/echobridge/relay-backend/pkg/errors"
)

func TestHandleTextMessage_Success(t *testing.T) {
	c := qt.New(t)
	f := newVoiceFixture(t)

	f.svc.HandleTextMessage(context.Background(), f.chat, "hello alexa")

	c.Assert(f.bk.calls, qt.Equals, 1)
	c.Check(f.bk.types[0], qt.Equals, backend.MessageTypeText)
	c.Check(f.bk.payloads[0].Text, qt.Equals, "hello alexa")
	c.Check(f.bk.tokens[0], qt.Equals, f.token)
	c.Assert(f.tg.sent, qt.DeepEquals, []string{msgTextSuccess})
}

func TestHandleTextMessage_BackendOutcomes(t *testing.T) {
	c := qt.New(t)

	testcases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "timeout", err: errorsx.ErrNotifyTimeout, wantMsg: msgTextTimeout},
		{name: "rejected", err: errorsx.ErrNotifyRejected, wantMsg: msgTextFailed},
	}

	for _, tc := range testcases {
		c.Run(tc.name, func(c *qt.C) {
			f := newVoiceFixture(c)
			f.bk.err = tc.err

			f.svc.HandleTextMessage(context.Background(), f.chat, "hello")

			c.Assert(f.tg.sent, qt.DeepEquals, []string{tc.wantMsg})
		})
	}
}

func TestHandleTextMessage_UnregisteredUserGetsLinkPrompt(t *testing.T) {
	c := qt.New(t)
	f := newVoiceFixture(t)

	f.svc.HandleTextMessage(context.Background(), "999", "hello")

	c.Check(f.bk.calls, qt.Equals, 0)
	c.Assert(f.tg.sent, qt.HasLen, 1)
	c.Check(f.tg.sent[0], qt.Contains, "Link Your Account")
}

func TestRegisterUser(t *testing.T) {
	c := qt.New(t)
	f := newVoiceFixture(t)

	err := f.svc.RegisterUser(context.Background(), "777", "token", "refresh")
	c.Assert(err, qt.IsNil)

	c.Assert(f.repo.upserted, qt.HasLen, 1)
	c.Check(f.repo.upserted[0].ChatID, qt.Equals, "777")
	c.Assert(f.tg.sent, qt.DeepEquals, []string{msgAccountLinked})
}

func TestRegisterUser_MissingFields(t *testing.T) {
	c := qt.New(t)
	f := newVoiceFixture(t)

	err := f.svc.RegisterUser(context.Background(), "777", "", "refresh")
	c.Assert(err, qt.IsNotNil)
	c.Check(f.repo.upserted, qt.HasLen, 0)
	c.Check(f.tg.sent, qt.HasLen, 0)
}

func TestHandleUnsupportedMessage(t *testing.T) {
	c := qt.New(t)
	f := newVoiceFixture(t)

	f.svc.HandleUnsupportedMessage(context.Background(), f.chat)

	c.Assert(f.tg.sent, qt.DeepEquals, []string{msgUnsupported})
}
