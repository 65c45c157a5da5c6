// Package db keeps an optional audit trail of served predictions in SQLite.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// PredictionRecord is one served prediction.
type PredictionRecord struct {
	RequestID string             `json:"request_id"`
	Schema    string             `json:"schema"`
	Features  map[string]float64 `json:"features"`
	Raw       float64            `json:"raw"`
	Predicted float64            `json:"predicted_AQI"`
	CreatedAt time.Time          `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

// Open creates the database file and table if needed.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("audit path is empty")
	}
	database, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        request_id TEXT,
        schema_name TEXT NOT NULL,
        features TEXT NOT NULL,
        raw REAL NOT NULL,
        predicted REAL NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: database}, nil
}

// Record inserts one prediction.
func (s *Store) Record(ctx context.Context, rec PredictionRecord) error {
	features, err := json.Marshal(rec.Features)
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO predictions (request_id, schema_name, features, raw, predicted, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Schema, string(features), rec.Raw, rec.Predicted, rec.CreatedAt)
	return err
}

// Recent returns up to limit predictions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT request_id, schema_name, features, raw, predicted, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var rec PredictionRecord
		var requestID sql.NullString
		var features string
		if err := rows.Scan(&requestID, &rec.Schema, &features, &rec.Raw, &rec.Predicted, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.RequestID = requestID.String
		if err := json.Unmarshal([]byte(features), &rec.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
