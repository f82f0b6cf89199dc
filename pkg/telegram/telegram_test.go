package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	gohttp "net/http"
	"testing"

	"github.com/kopisahaja/kopisahaja/pkg/http"
	"github.com/kopisahaja/kopisahaja/pkg/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport answers every request with a canned body and keeps
// what was sent.
type recordingTransport struct {
	status   int
	body     string
	requests []*gohttp.Request
	payloads []map[string]any
}

func (t *recordingTransport) RoundTrip(req *gohttp.Request) (*gohttp.Response, error) {
	t.requests = append(t.requests, req)
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		var payload map[string]any
		_ = json.Unmarshal(raw, &payload)
		t.payloads = append(t.payloads, payload)
	}
	return &gohttp.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(bytes.NewBufferString(t.body)),
		Header:     make(gohttp.Header),
	}, nil
}

func install(t *testing.T, rt *recordingTransport) {
	t.Helper()
	http.DefaultClient.Transport = rt
	t.Cleanup(http.ResetTransport)
}

func TestDisabledBot(t *testing.T) {
	bot := telegram.New("")
	assert.False(t, bot.Enabled())
	assert.ErrorIs(t, bot.SendMessage(context.Background(), "1", "hi"), telegram.ErrDisabled)
	_, err := bot.GetUpdates(context.Background(), 0)
	assert.ErrorIs(t, err, telegram.ErrDisabled)
}

func TestSendMessage(t *testing.T) {
	rt := &recordingTransport{status: 200, body: `{"ok":true}`}
	install(t, rt)

	bot := telegram.New("token123")
	require.NoError(t, bot.SendMessage(context.Background(), "42", "your order is ready"))

	require.Len(t, rt.requests, 1)
	assert.Contains(t, rt.requests[0].URL.Path, "bottoken123/sendMessage")
	require.Len(t, rt.payloads, 1)
	assert.Equal(t, "42", rt.payloads[0]["chat_id"])
	assert.Equal(t, "your order is ready", rt.payloads[0]["text"])
}

func TestSendMessageAPIError(t *testing.T) {
	rt := &recordingTransport{status: 200, body: `{"ok":false,"description":"chat not found"}`}
	install(t, rt)

	err := telegram.New("token123").SendMessage(context.Background(), "42", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestGetUpdates(t *testing.T) {
	rt := &recordingTransport{status: 200, body: `{"ok":true,"result":[
		{"update_id":7,"message":{"text":"/track abc","chat":{"id":99}}}
	]}`}
	install(t, rt)

	updates, err := telegram.New("token123").GetUpdates(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(7), updates[0].UpdateID)
	assert.Equal(t, "/track abc", updates[0].Message.Text)
	assert.Equal(t, int64(99), updates[0].Message.Chat.ID)

	// The requested offset is forwarded.
	require.Len(t, rt.payloads, 1)
	assert.EqualValues(t, 5, rt.payloads[0]["offset"])
}
