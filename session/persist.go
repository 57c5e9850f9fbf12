package session

import (
	"database/sql"

	"chatiefy-tui/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// ErrNoIdentity is returned by Load when no identity has been saved yet
var ErrNoIdentity = errors.New("no stored identity")

// IdentityStore persists the durable identity record in a local SQLite
// database. Only identity survives restarts; chat state never does.
type IdentityStore struct {
	conn *sql.DB
}

// OpenIdentityStore opens (and initializes) the identity database at path
func OpenIdentityStore(path string) (*IdentityStore, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "open identity db")
	}

	s := &IdentityStore{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *IdentityStore) Close() error {
	return s.conn.Close()
}

func (s *IdentityStore) init() error {
	query := `CREATE TABLE IF NOT EXISTS identity (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		username TEXT NOT NULL,
		auth TEXT NOT NULL,
		avatar TEXT NOT NULL DEFAULT ''
	)`
	if _, err := s.conn.Exec(query); err != nil {
		return errors.Wrap(err, "init identity schema")
	}
	return nil
}

// Save writes the identity, replacing any previous one
func (s *IdentityStore) Save(id Identity) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO identity (id, username, auth, avatar) VALUES (1, ?, ?, ?)",
		id.User.Username, id.AuthToken, id.User.Avatar,
	)
	return errors.Wrap(err, "save identity")
}

// Load reads the saved identity, or ErrNoIdentity when none exists
func (s *IdentityStore) Load() (Identity, error) {
	var username, auth, avatar string
	err := s.conn.QueryRow(
		"SELECT username, auth, avatar FROM identity WHERE id = 1",
	).Scan(&username, &auth, &avatar)
	if err == sql.ErrNoRows {
		return Identity{}, ErrNoIdentity
	}
	if err != nil {
		return Identity{}, errors.Wrap(err, "load identity")
	}
	return Identity{
		User:          models.User{Username: username, Auth: auth, Avatar: avatar},
		AuthToken:     auth,
		Authenticated: true,
	}, nil
}

// Clear removes the saved identity
func (s *IdentityStore) Clear() error {
	_, err := s.conn.Exec("DELETE FROM identity")
	return errors.Wrap(err, "clear identity")
}
