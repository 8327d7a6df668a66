package contact

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/postgres"
)

// Schema creates the contact_messages table.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS contact_messages_created_at_idx
		ON contact_messages (created_at)`,
}

// PostgresStore keeps messages in PostgreSQL.
type PostgresStore struct {
	db *postgres.Client
}

func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, m Message) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, message, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Name, m.Email, m.Message, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving contact message: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Message, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, name, email, message, created_at
		 FROM contact_messages ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contact messages: %w", err)
	}
	return messages, nil
}
