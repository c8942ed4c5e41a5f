package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinema-chat/sinema/src/chatapi"
	"github.com/sinema-chat/sinema/src/memory"
	"github.com/sinema-chat/sinema/src/upstream"
)

func assertStoreUntouched(t *testing.T, store *memory.InMemoryStore, userID string) {
	t.Helper()
	_, source, err := store.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, memory.SourceDefaultNew, source, "no record should have been persisted")
}

func TestChatEmptyPrompt(t *testing.T) {
	chat := &stubChat{}
	srv, store := newTestServer(testConfig(), chat)

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"","userId":"u1"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "prompt")
	require.NotNil(t, body.Example)
	assert.NotEmpty(t, body.Example.Prompt)

	assert.Zero(t, chat.calls, "upstream must not be called")
	assertStoreUntouched(t, store, "u1")
}

func TestChatMissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Upstream.APIKey = ""
	chat := &stubChat{}
	srv, store := newTestServer(cfg, chat)

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"recommend something","userId":"u1"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "server configuration")

	assert.Zero(t, chat.calls, "upstream must not be called without a credential")
	assertStoreUntouched(t, store, "u1")
}

func TestChatSuccess(t *testing.T) {
	chat := &stubChat{reply: "Try Dune: Part Two."}
	srv, store := newTestServer(testConfig(), chat)

	w := doRequest(t, srv, http.MethodPost,
		`{"prompt":"what should I watch tonight?","userId":"wanjiku","project":"movie-night"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Try Dune: Part Two.", resp.Reply)
	assert.Equal(t, "wanjiku", resp.Memory.UserID)
	assert.Equal(t, "movie-night", resp.Memory.LastProject)
	assert.Equal(t, 3, resp.Memory.ConversationLength)

	// Outbound call carries the tone instruction and sampling parameters.
	require.Equal(t, 1, chat.calls)
	require.NotNil(t, chat.lastReq)
	require.Len(t, chat.lastReq.Messages, 2)
	assert.Contains(t, chat.lastReq.Messages[0].Content, "English")
	require.NotNil(t, chat.lastReq.Temperature)
	require.NotNil(t, chat.lastReq.MaxTokens)

	// Record persisted without the tone instruction.
	record, source, err := store.Load(context.Background(), "wanjiku")
	require.NoError(t, err)
	assert.Equal(t, memory.SourceStored, source)
	require.Len(t, record.Conversation, 3)
	assert.Equal(t, memory.PersonaPreamble, record.Conversation[0].Content)
	assert.Equal(t, "what should I watch tonight?", record.LastTask)
	assert.Equal(t, "movie-night", record.LastProject)
	assert.Equal(t, chatapi.RoleAssistant, record.Conversation[2].Role)
}

func TestChatShengToneInstruction(t *testing.T) {
	chat := &stubChat{reply: "Hiyo ni fiti!"}
	srv, _ := newTestServer(testConfig(), chat)

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"bro that movie was noma and safi"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, chat.lastReq)
	assert.Contains(t, chat.lastReq.Messages[0].Content, "Sheng")
}

func TestChatSanitizesReply(t *testing.T) {
	chat := &stubChat{reply: "As an AI language model, I recommend Heat."}
	srv, store := newTestServer(testConfig(), chat)

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"anything good?","userId":"u1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Reply, "As an AI")
	assert.NotContains(t, resp.Reply, "language model")
	assert.Contains(t, resp.Reply, "I recommend Heat.")

	// Sanitized text is what gets persisted too.
	record, _, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, resp.Reply, record.Conversation[2].Content)
}

func TestChatDefaultUserID(t *testing.T) {
	chat := &stubChat{reply: "ok"}
	srv, store := newTestServer(testConfig(), chat)

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"hello"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, DefaultUserID, resp.Memory.UserID)

	_, source, err := store.Load(context.Background(), DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, memory.SourceStored, source)
}

func TestChatUpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "auth failure",
			err:        &upstream.APIError{StatusCode: http.StatusUnauthorized, Message: "bad key"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rate limit",
			err:        &upstream.APIError{StatusCode: http.StatusTooManyRequests, Message: "slow down"},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "timeout",
			err:        &upstream.TimeoutError{Operation: "chat completion", Duration: time.Second},
			wantStatus: http.StatusRequestTimeout,
		},
		{
			name:       "upstream reported timeout",
			err:        &upstream.APIError{StatusCode: http.StatusGatewayTimeout, Message: "gateway timeout"},
			wantStatus: http.StatusRequestTimeout,
		},
		{
			name:       "unclassified",
			err:        errors.New("wire broke"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &stubChat{err: tt.err}
			srv, store := newTestServer(testConfig(), chat)

			w := doRequest(t, srv, http.MethodPost, `{"prompt":"hi","userId":"u1"}`)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			assert.Empty(t, body.Detail, "detail is reserved for dev mode")

			// The user turn is persisted even though the call failed.
			record, source, err := store.Load(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, memory.SourceStored, source)
			require.Len(t, record.Conversation, 2)
			assert.Equal(t, chatapi.RoleUser, record.Conversation[1].Role)
		})
	}
}

func TestChatDevModeIncludesDetail(t *testing.T) {
	cfg := testConfig()
	cfg.Server.DevMode = true
	chat := &stubChat{err: errors.New("socket exploded")}
	srv, _ := newTestServer(cfg, chat)

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"hi"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "socket exploded")
}

func TestChatTruncatesLongConversation(t *testing.T) {
	chat := &stubChat{reply: "sawa, try Rafiki"}
	srv, store := newTestServer(testConfig(), chat)
	ctx := context.Background()

	seeded := memory.NewRecord("u1")
	for i := 0; i < 19; i++ {
		seeded.Append(chatapi.RoleUser, "old turn")
	}
	require.NoError(t, store.Save(ctx, seeded))

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"one more","userId":"u1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, memory.MaxTurns, resp.Memory.ConversationLength)

	record, _, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, record.Conversation, memory.MaxTurns)
	assert.Equal(t, chatapi.RoleSystem, record.Conversation[0].Role)
	assert.Equal(t, "sawa, try Rafiki", record.Conversation[memory.MaxTurns-1].Content)
}

func TestChatKeepsProjectAcrossRequests(t *testing.T) {
	chat := &stubChat{reply: "ok"}
	srv, _ := newTestServer(testConfig(), chat)

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"first","userId":"u1","project":"movie-night"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodPost, `{"prompt":"second","userId":"u1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "movie-night", resp.Memory.LastProject)
}

func TestChatRecoversFromCorruptRecord(t *testing.T) {
	chat := &stubChat{reply: "fresh start"}
	srv, store := newTestServer(testConfig(), chat)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, memory.NewRecord("u1")))
	store.Corrupt("u1")

	w := doRequest(t, srv, http.MethodPost, `{"prompt":"hello again","userId":"u1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Memory.ConversationLength, "corrupt record is replaced by a fresh default")
}
