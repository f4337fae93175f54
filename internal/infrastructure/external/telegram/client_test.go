package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeAPI records calls and answers each method from the answers map.
type fakeAPI struct {
	calls   []string
	bodies  map[string]map[string]interface{}
	answers map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		bodies:  make(map[string]map[string]interface{}),
		answers: make(map[string]string),
	}
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[len("/bottest-token/"):]
		f.calls = append(f.calls, method)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.bodies[method] = body

		answer, ok := f.answers[method]
		if !ok {
			answer = `{"ok":true,"result":true}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(answer))
	}
}

func newTestClient(t *testing.T, api *fakeAPI) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig("test-token")
	cfg.BaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	cfg.RetryAttempts = 1
	return NewClient(cfg), srv
}

func TestEditMessageText(t *testing.T) {
	api := newFakeAPI()
	api.answers["editMessageText"] = `{"ok":true,"result":{"message_id":42,"chat":{"id":7},"text":"обновлено"}}`
	client, _ := newTestClient(t, api)

	kb := NewKeyboard().Row(Button("✅ готово", "task:done:t1")).Build()
	msg, err := client.EditMessageText(context.Background(), 7, 42, "обновлено", "MarkdownV2", kb)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), msg.MessageID)

	body := api.bodies["editMessageText"]
	assert.Equal(t, float64(7), body["chat_id"])
	assert.Equal(t, float64(42), body["message_id"])
	assert.Equal(t, "обновлено", body["text"])
	assert.Equal(t, "MarkdownV2", body["parse_mode"])
	assert.NotNil(t, body["reply_markup"])
}

func TestDeleteMessage(t *testing.T) {
	api := newFakeAPI()
	client, _ := newTestClient(t, api)

	err := client.DeleteMessage(context.Background(), 7, 42)
	assert.NoError(t, err)

	assert.Equal(t, []string{"deleteMessage"}, api.calls)
	body := api.bodies["deleteMessage"]
	assert.Equal(t, float64(7), body["chat_id"])
	assert.Equal(t, float64(42), body["message_id"])
}

func TestCallAPIReportsDescription(t *testing.T) {
	api := newFakeAPI()
	api.answers["deleteMessage"] = `{"ok":false,"error_code":400,"description":"message to delete not found"}`
	client, _ := newTestClient(t, api)

	err := client.DeleteMessage(context.Background(), 7, 42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "message to delete not found")
}
