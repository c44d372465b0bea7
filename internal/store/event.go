package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yewon-dev/gongjucal/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventCols = `e.id, e.title, e.date, u.id, u.username, u.color`

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := scanner.Scan(&e.ID, &e.Title, &e.Date, &e.User.ID, &e.User.Username, &e.User.Color)
	if err != nil {
		return nil, err
	}
	// Dates are stored normalized to UTC; callers compare and render by local
	// calendar day, so hand them back in the local frame.
	e.Date = e.Date.In(time.Local)
	return &e, nil
}

func (s *EventStore) Create(title string, date time.Time, userID int64) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (title, date, user_id) VALUES (?, ?, ?)`,
		title, date.UTC(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(
		`SELECT `+eventCols+` FROM events e JOIN users u ON u.id = e.user_id WHERE e.id = ?`,
		id,
	)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// List returns every event for every user, oldest first. The whole list is
// re-read after each mutation rather than patched incrementally.
func (s *EventStore) List() ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT ` + eventCols + ` FROM events e JOIN users u ON u.id = e.user_id ORDER BY e.date ASC, e.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Update changes an event's title and date. Ownership never changes.
func (s *EventStore) Update(id int64, title string, date time.Time) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events SET title = ?, date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, date.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
