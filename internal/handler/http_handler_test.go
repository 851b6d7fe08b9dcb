package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/pkg/response"
)

func TestHTTP_RequiresAuth(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/v1/threads", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.CodeUnauthorized, env.Error.Code)
}

func TestHTTP_ThreadFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/threads", &endUser, CreateThreadRequest{Message: "help"})
	require.Equal(t, http.StatusCreated, code)
	var thread domain.ThreadView
	require.NoError(t, json.Unmarshal(env.Data, &thread))
	require.NotNil(t, thread.LastMessage)
	assert.Equal(t, "help", thread.LastMessage.Text)
	assert.Nil(t, thread.Admin)

	code, env = s.do(t, http.MethodGet, "/api/v1/threads", &adminA, nil)
	require.Equal(t, http.StatusOK, code)
	var listed []domain.ThreadView
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].UnreadCount)

	code, env = s.do(t, http.MethodPost, "/api/v1/threads/"+thread.ID+"/claim", &adminA, nil)
	require.Equal(t, http.StatusOK, code)
	var claimed domain.ThreadView
	require.NoError(t, json.Unmarshal(env.Data, &claimed))
	require.NotNil(t, claimed.Admin)
	assert.Equal(t, adminA.ID, claimed.Admin.ID)

	code, env = s.do(t, http.MethodPost, "/api/v1/threads/"+thread.ID+"/claim", &adminB, nil)
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.CodeAlreadyAssigned, env.Error.Code)

	code, env = s.do(t, http.MethodPost, "/api/v1/threads/"+thread.ID+"/messages", &adminA, SendMessageRequest{Text: "on it"})
	require.Equal(t, http.StatusCreated, code)
	var sent domain.MessageView
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, "on it", sent.Text)
	assert.Equal(t, adminA.ID, sent.Sender.ID)

	code, env = s.do(t, http.MethodGet, "/api/v1/threads/"+thread.ID, &endUser, nil)
	require.Equal(t, http.StatusOK, code)
	var got domain.ThreadView
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 1, got.UnreadCount)
	require.NotNil(t, got.LastMessage)
	assert.Equal(t, sent.ID, got.LastMessage.ID)

	code, env = s.do(t, http.MethodGet, "/api/v1/threads/"+thread.ID+"/messages", &endUser, nil)
	require.Equal(t, http.StatusOK, code)
	var msgs []domain.MessageView
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "help", msgs[0].Text)
	assert.Equal(t, "on it", msgs[1].Text)

	code, env = s.do(t, http.MethodGet, "/api/v1/threads/"+thread.ID, &endUser, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Zero(t, got.UnreadCount)
}

func TestHTTP_MarkRead(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodPost, "/api/v1/threads", &endUser, CreateThreadRequest{Message: "one"})
	var thread domain.ThreadView
	require.NoError(t, json.Unmarshal(env.Data, &thread))
	s.do(t, http.MethodPost, "/api/v1/threads/"+thread.ID+"/claim", &adminA, nil)

	code, env := s.do(t, http.MethodPost, "/api/v1/threads/"+thread.ID+"/read", &adminA, nil)
	require.Equal(t, http.StatusOK, code)
	var marked MarkReadResponse
	require.NoError(t, json.Unmarshal(env.Data, &marked))
	assert.Equal(t, int64(1), marked.Marked)

	_, env = s.do(t, http.MethodPost, "/api/v1/threads/"+thread.ID+"/read", &adminA, nil)
	require.NoError(t, json.Unmarshal(env.Data, &marked))
	assert.Zero(t, marked.Marked)
}

func TestHTTP_ErrorMapping(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodPost, "/api/v1/threads", &endUser, nil)
	var thread domain.ThreadView
	require.NoError(t, json.Unmarshal(env.Data, &thread))

	tests := []struct {
		name   string
		method string
		path   string
		user   domain.UserSummary
		body   interface{}
		status int
		code   string
	}{
		{"operator cannot open thread", http.MethodPost, "/api/v1/threads", adminA, nil, http.StatusForbidden, response.CodeForbidden},
		{"end user cannot claim", http.MethodPost, "/api/v1/threads/" + thread.ID + "/claim", endUser, nil, http.StatusForbidden, response.CodeForbidden},
		{"malformed id", http.MethodGet, "/api/v1/threads/not-a-uuid", endUser, nil, http.StatusBadRequest, response.CodeBadRequest},
		{"unknown thread", http.MethodGet, "/api/v1/threads/" + uuid.NewString(), endUser, nil, http.StatusNotFound, response.CodeNotFound},
		{"other end user", http.MethodGet, "/api/v1/threads/" + thread.ID, stranger, nil, http.StatusForbidden, response.CodeForbidden},
		{"missing text", http.MethodPost, "/api/v1/threads/" + thread.ID + "/messages", endUser, map[string]string{}, http.StatusBadRequest, response.CodeBadRequest},
		{"blank text", http.MethodPost, "/api/v1/threads/" + thread.ID + "/messages", endUser, SendMessageRequest{Text: "   "}, http.StatusBadRequest, response.CodeBadRequest},
		{"non participant send", http.MethodPost, "/api/v1/threads/" + thread.ID + "/messages", stranger, SendMessageRequest{Text: "hi"}, http.StatusForbidden, response.CodeForbidden},
		{"unassigned operator send", http.MethodPost, "/api/v1/threads/" + thread.ID + "/messages", adminB, SendMessageRequest{Text: "hi"}, http.StatusForbidden, response.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			code, env := s.do(t, tt.method, tt.path, &user, tt.body)
			assert.Equal(t, tt.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}
