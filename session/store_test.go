package session

import (
	"testing"

	"chatiefy-tui/models"

	"github.com/stretchr/testify/require"
)

func newAuthedStore() *Store {
	s := NewStore()
	s.SetUser(models.User{Username: "alice", Auth: "secret"}, "token")
	return s
}

func TestSetUser(t *testing.T) {
	s := newAuthedStore()
	id := s.Identity()
	require.True(t, id.Authenticated)
	require.Equal(t, "alice", id.User.Username)
	require.Equal(t, "token", id.AuthToken)
}

func TestAddMessagesDedup(t *testing.T) {
	s := newAuthedStore()
	msg := models.Message{Sender: "bob", Text: "hello", Time: 1700000000}

	s.AddMessages([]models.Message{msg})
	require.Len(t, s.Messages(), 1)

	// Same (time, text) pair never grows the list
	s.AddMessages([]models.Message{msg})
	require.Len(t, s.Messages(), 1)

	// Duplicate inside one batch is dropped too
	other := models.Message{Sender: "bob", Text: "hi", Time: 1700000001}
	s.AddMessages([]models.Message{other, other})
	require.Len(t, s.Messages(), 2)
}

func TestAddMessagesDifferentSecondKept(t *testing.T) {
	s := newAuthedStore()
	s.AddMessages([]models.Message{{Sender: "bob", Text: "hello", Time: 1700000000}})
	s.AddMessages([]models.Message{{Sender: "bob", Text: "hello", Time: 1700000001}})
	require.Len(t, s.Messages(), 2)
}

func TestAddMessagesSuppressesOwnEcho(t *testing.T) {
	s := newAuthedStore()

	// Optimistic local append
	s.AddMessages([]models.Message{{Sender: "alice", Text: "hi", Time: 1700000000, Random: 1}})
	require.Len(t, s.Messages(), 1)

	// Server echoes the same message back with a slightly later timestamp
	s.AddMessages([]models.Message{{Sender: "alice", Text: "hi", Time: 1700000003}})
	require.Len(t, s.Messages(), 1)

	// Outside the echo window the message is treated as a new one
	s.AddMessages([]models.Message{{Sender: "alice", Text: "hi", Time: 1700000010}})
	require.Len(t, s.Messages(), 2)
}

func TestAddMessagesPartnerEchoNotSuppressed(t *testing.T) {
	s := newAuthedStore()
	s.AddMessages([]models.Message{{Sender: "bob", Text: "hi", Time: 1700000000}})
	s.AddMessages([]models.Message{{Sender: "bob", Text: "hi", Time: 1700000002}})
	require.Len(t, s.Messages(), 2)
}

func TestUpdatePollStateReplacesWholesale(t *testing.T) {
	s := newAuthedStore()
	first := models.PollCursor{MessagesHash: "h1", NotifierHash: "n1", NewMessagesT: 10}
	s.UpdatePollState(first)
	require.Equal(t, first, s.Cursor())

	// A later cursor without a notifier hash wins entirely; nothing is merged
	second := models.PollCursor{MessagesHash: "h2", NewMessagesT: 20}
	s.UpdatePollState(second)
	require.Equal(t, second, s.Cursor())
}

func TestSetPartnerForcesConnected(t *testing.T) {
	s := newAuthedStore()
	s.SetStatus(models.StatusSearching)
	s.SetPartner("bob", "bob")

	require.Equal(t, models.StatusConnected, s.Status())
	name, id, ok := s.Partner()
	require.True(t, ok)
	require.Equal(t, "bob", name)
	require.Equal(t, "bob", id)
}

func TestResetChatKeepsIdentity(t *testing.T) {
	s := newAuthedStore()
	s.SetPartner("bob", "bob")
	s.AddMessages([]models.Message{{Sender: "bob", Text: "hey", Time: 1700000000}})
	s.UpdatePollState(models.PollCursor{MessagesHash: "h1"})

	s.ResetChat()

	require.Equal(t, models.StatusIdle, s.Status())
	_, _, ok := s.Partner()
	require.False(t, ok)
	require.Empty(t, s.Messages())
	require.Equal(t, models.PollCursor{}, s.Cursor())
	require.True(t, s.Identity().Authenticated)
	require.Equal(t, "alice", s.Identity().User.Username)
}

func TestLogoutClearsEverything(t *testing.T) {
	s := newAuthedStore()
	s.SetPartner("bob", "bob")
	s.AddMessages([]models.Message{{Sender: "bob", Text: "hey", Time: 1700000000}})

	s.Logout()

	require.False(t, s.Identity().Authenticated)
	require.Equal(t, models.StatusIdle, s.Status())
	_, _, ok := s.Partner()
	require.False(t, ok)
	require.Empty(t, s.Messages())
}

func TestOnChangeFires(t *testing.T) {
	s := newAuthedStore()
	fired := 0
	s.SetOnChange(func() { fired++ })

	s.SetStatus(models.StatusSearching)
	s.SetPartner("bob", "bob")
	s.ResetChat()

	require.Equal(t, 3, fired)
}
