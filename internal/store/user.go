package store

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/yewon-dev/gongjucal/internal/model"
)

// RosterEntry pairs a fixed account name with its display color.
type RosterEntry struct {
	Username string
	Color    string
}

// Roster is the closed set of accounts. Each account's password equals its
// username; this is a product decision of the sample system, not a security
// recommendation.
var Roster = []RosterEntry{
	{"ahyeon", "#6366F1"},
	{"yewon", "#EC4899"},
	{"gayeon", "#F59E0B"},
	{"sion", "#10B981"},
	{"hansol", "#3B82F6"},
	{"dasol", "#8B5CF6"},
}

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Username, &u.Color)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, username, color`

// SeedRoster inserts any missing roster accounts. Hashes are generated at
// startup so no credential material lives in the migrations.
func (s *UserStore) SeedRoster() error {
	for _, entry := range Roster {
		existing, err := s.GetByUsername(entry.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(entry.Username), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash roster password: %w", err)
		}

		_, err = s.db.Exec(
			`INSERT INTO users (username, color, password_hash) VALUES (?, ?, ?)`,
			entry.Username, entry.Color, string(hash),
		)
		if err != nil {
			return fmt.Errorf("insert roster user: %w", err)
		}
	}
	return nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Authenticate checks the credentials against the stored bcrypt hash.
// Returns nil without error for unknown users or wrong passwords; the caller
// shows one generic failure message either way.
func (s *UserStore) Authenticate(username, password string) (*model.User, error) {
	var u model.User
	var hash string
	err := s.db.QueryRow(
		`SELECT id, username, color, password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.Color, &hash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user for auth: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, nil
	}
	return &u, nil
}
