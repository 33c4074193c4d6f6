package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrDeckNotFound is returned for an unknown deck id.
var ErrDeckNotFound = errors.New("deck not found")

// CardRow is a card as stored.
type CardRow struct {
	ID           string
	DeckID       string
	UserID       string
	TemplateID   string
	FieldValues  map[string]string
	Tags         []string
	SortPosition int
	SRSStatus    string
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
}

// Store is the card datastore.
type Store interface {
	NextPosition(ctx context.Context, deckID string) (int, error)
	InsertCards(ctx context.Context, rows []CardRow) error
	SetNextPosition(ctx context.Context, deckID string, position int) error
}

// SQLiteStore keeps decks and cards in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and creates missing
// tables.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// createTables creates the deck and card tables
func (s *SQLiteStore) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			id text PRIMARY KEY,
			name text NOT NULL DEFAULT '',
			next_position integer NOT NULL DEFAULT 0,
			created_at integer NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cards (
			id text PRIMARY KEY,
			deck_id text NOT NULL REFERENCES decks(id),
			user_id text NOT NULL,
			template_id text NOT NULL,
			field_values text NOT NULL,
			tags text NOT NULL,
			sort_position integer NOT NULL,
			srs_status text NOT NULL,
			ease_factor real NOT NULL,
			interval_days integer NOT NULL,
			repetitions integer NOT NULL,
			created_at integer NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_cards_deck ON cards (deck_id, sort_position)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateDeck adds a deck unless it exists and returns its id. An empty id
// gets a new UUID.
func (s *SQLiteStore) CreateDeck(ctx context.Context, id, name string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO decks (id, name, next_position, created_at) VALUES (?, ?, 0, ?)`,
		id, name, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to create deck: %w", err)
	}
	return id, nil
}

// NextPosition implements Store.
func (s *SQLiteStore) NextPosition(ctx context.Context, deckID string) (int, error) {
	var position int
	err := s.db.QueryRowContext(ctx, `SELECT next_position FROM decks WHERE id = ?`, deckID).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read deck position: %w", err)
	}
	return position, nil
}

// SetNextPosition implements Store.
func (s *SQLiteStore) SetNextPosition(ctx context.Context, deckID string, position int) error {
	result, err := s.db.ExecContext(ctx, `UPDATE decks SET next_position = ? WHERE id = ?`, position, deckID)
	if err != nil {
		return fmt.Errorf("failed to update deck position: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
	}
	return nil
}

// InsertCards implements Store. The rows are inserted in one transaction.
func (s *SQLiteStore) InsertCards(ctx context.Context, rows []CardRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cards
		(id, deck_id, user_id, template_id, field_values, tags, sort_position,
		 srs_status, ease_factor, interval_days, repetitions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, row := range rows {
		fields, err := json.Marshal(row.FieldValues)
		if err != nil {
			return fmt.Errorf("failed to encode field values: %w", err)
		}
		tags, err := json.Marshal(row.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
		}

		_, err = stmt.ExecContext(ctx,
			row.ID,
			row.DeckID,
			row.UserID,
			row.TemplateID,
			string(fields),
			string(tags),
			row.SortPosition,
			row.SRSStatus,
			row.EaseFactor,
			row.IntervalDays,
			row.Repetitions,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert card: %w", err)
		}
	}

	return tx.Commit()
}

// Cards returns the cards of a deck ordered by position.
func (s *SQLiteStore) Cards(ctx context.Context, deckID string) ([]CardRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, deck_id, user_id, template_id, field_values, tags,
		sort_position, srs_status, ease_factor, interval_days, repetitions
		FROM cards WHERE deck_id = ? ORDER BY sort_position`, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []CardRow
	for rows.Next() {
		var (
			card         CardRow
			fields, tags string
		)
		if err := rows.Scan(&card.ID, &card.DeckID, &card.UserID, &card.TemplateID, &fields, &tags,
			&card.SortPosition, &card.SRSStatus, &card.EaseFactor, &card.IntervalDays, &card.Repetitions); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fields), &card.FieldValues); err != nil {
			return nil, fmt.Errorf("card %s: %w", card.ID, err)
		}
		if err := json.Unmarshal([]byte(tags), &card.Tags); err != nil {
			return nil, fmt.Errorf("card %s: %w", card.ID, err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}
