package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatiefy-tui/models"

	"github.com/stretchr/testify/require"
)

func TestRegisterGuestRequestShape(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"auth":   "secret",
			"status": "ok",
			"details": map[string]string{
				"username": "alice",
				"avatar":   "a.png",
				"thumb":    "t.png",
			},
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).RegisterGuest(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "/auth/register-guest", gotPath)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "alice", gotBody["username"])
	require.Equal(t, clientVersion, gotBody["client_version"])
	require.Equal(t, "secret", resp.Auth)
	require.Equal(t, "alice", resp.Details.Username)
}

func TestAuthTokenQueryParameter(t *testing.T) {
	var gotToken string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("auth_token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"random": map[string]string{"status": "searching"},
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).StartRandom(context.Background(), "tok en", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok en", gotToken)
	require.Equal(t, "secret", gotBody["auth"])
	require.Equal(t, "searching", resp.Random.Status)
}

func TestPollOmitsEmptyCursor(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]interface{}{"partner_state": "online"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Poll(context.Background(), "token", "secret", "", models.PollCursor{})
	require.NoError(t, err)
	require.JSONEq(t, `{"auth":"secret"}`, string(raw))
}

func TestPollEchoesCursor(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{"partner_state": "online"})
	}))
	defer srv.Close()

	cur := models.PollCursor{MessagesHash: "h1", NotifierHash: "n1", NewMessagesT: 42}
	_, err := New(srv.URL).Poll(context.Background(), "token", "secret", "bob", cur)
	require.NoError(t, err)
	require.Equal(t, "bob", gotBody["target"])
	require.Equal(t, "h1", gotBody["messageshash"])
	require.Equal(t, "n1", gotBody["notifier_hash"])
	require.EqualValues(t, 42, gotBody["new_messages_t"])
}

func TestErrorDetailSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "username already taken"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).CheckUsername(context.Background(), "alice")
	require.Error(t, err)
	require.Contains(t, err.Error(), "username already taken")
}

func TestErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL).Disconnect(context.Background(), "token", "secret", "bob")
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestMemesRequestAndResponse(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"memes": []map[string]interface{}{
				{"id": "7", "filename": "cat.jpg", "hunter": "bob", "likes": 3, "dislikes": 1},
			},
			"has_more": true,
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Memes(context.Background(), "token", "secret", "5")
	require.NoError(t, err)
	require.Equal(t, "5", gotBody["last_meme_id"])
	require.True(t, resp.HasMore)
	require.Len(t, resp.Memes, 1)
	require.Equal(t, "cat.jpg", resp.Memes[0].Filename)
	require.Equal(t, "bob", resp.Memes[0].Author)
}
