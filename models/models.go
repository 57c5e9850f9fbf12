package models

import "fmt"

// ChatStatus describes the state of the random chat session
type ChatStatus string

const (
	StatusIdle         ChatStatus = "idle"
	StatusSearching    ChatStatus = "searching"
	StatusConnected    ChatStatus = "connected"
	StatusDisconnected ChatStatus = "disconnected"
)

// User is the registered guest identity
type User struct {
	Username string
	Auth     string // per-request secret issued at registration
	Avatar   string
}

// Message is a chat message as delivered by the service
type Message struct {
	Sender string `json:"hunter"`
	Text   string `json:"message"`
	Time   int64  `json:"time"` // unix seconds
	Seen   int    `json:"seen"`
	Random int    `json:"random"`
	Thumb  string `json:"thumb,omitempty"`
}

// Key returns the dedup key for a message. Two messages with the same
// text in the same second are treated as one.
func (m Message) Key() string {
	return fmt.Sprintf("%d-%s", m.Time, m.Text)
}

// PollCursor holds the opaque tokens the server issues on each poll.
// They are echoed back verbatim on the next request and never interpreted.
type PollCursor struct {
	MessagesHash string
	NotifierHash string
	NewMessagesT int64
}

// Meme is one entry of the community meme gallery
type Meme struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Author   string `json:"hunter"`
	Rank     string `json:"rank"`
	Date     string `json:"date"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
	Height   string `json:"height"`
	Width    string `json:"width"`
	RoomID   string `json:"roomId"`
}
