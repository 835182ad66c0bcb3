package database

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"moderation-bot/model"
)

// ActionStore persists pending scheduled actions in sqlite. Writes are
// durable before Put returns; losing a record would mean a restriction is
// never reverted.
type ActionStore struct {
	db *sqlx.DB
}

type actionRow struct {
	ID              string `db:"id"`
	Kind            string `db:"kind"`
	Payload         string `db:"payload"`
	GuildID         string `db:"guild_id"`
	OriginChannelID string `db:"origin_channel_id"`
	ActorID         string `db:"actor_id"`
	CreatedAt       int64  `db:"created_at"`
	DurationSeconds int64  `db:"duration_seconds"`
	DueAt           int64  `db:"due_at"`
}

// InitActionStore opens the scheduled action database and ensures the table
// exists.
func InitActionStore(dbPath string) (*ActionStore, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to action database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS scheduled_actions (
        id TEXT PRIMARY KEY,
        kind TEXT NOT NULL,
        payload TEXT NOT NULL,
        guild_id TEXT NOT NULL,
        origin_channel_id TEXT NOT NULL,
        actor_id TEXT NOT NULL,
        created_at INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        due_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_scheduled_actions_due_at ON scheduled_actions (due_at);`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create scheduled_actions table: %w", err)
	}

	return &ActionStore{db: db}, nil
}

// Put writes or overwrites one action record.
func (s *ActionStore) Put(action *model.ScheduledAction) error {
	payload, err := model.EncodePayload(action.Payload)
	if err != nil {
		return err
	}

	row := actionRow{
		ID:              action.ID,
		Kind:            string(action.Kind),
		Payload:         string(payload),
		GuildID:         action.GuildID,
		OriginChannelID: action.OriginChannelID,
		ActorID:         action.ActorID,
		CreatedAt:       action.CreatedAt.Unix(),
		DurationSeconds: action.DurationSeconds,
		DueAt:           action.DueAt.Unix(),
	}

	query := `INSERT OR REPLACE INTO scheduled_actions
              (id, kind, payload, guild_id, origin_channel_id, actor_id, created_at, duration_seconds, due_at)
              VALUES (:id, :kind, :payload, :guild_id, :origin_channel_id, :actor_id, :created_at, :duration_seconds, :due_at)`

	if _, err := s.db.NamedExec(query, row); err != nil {
		return fmt.Errorf("failed to insert scheduled action %s: %w", action.ID, err)
	}
	return nil
}

// Delete removes an action record. Deleting an absent id is a no-op so that
// fired actions can be cleaned up again after a crash.
func (s *ActionStore) Delete(id string) error {
	if _, err := s.db.Exec("DELETE FROM scheduled_actions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete scheduled action %s: %w", id, err)
	}
	return nil
}

// LoadAll returns every persisted action ordered by due time ascending.
// Records whose kind this build does not know are skipped with a warning
// rather than failing the load.
func (s *ActionStore) LoadAll() ([]*model.ScheduledAction, error) {
	var rows []actionRow
	if err := s.db.Select(&rows, "SELECT * FROM scheduled_actions ORDER BY due_at ASC"); err != nil {
		return nil, fmt.Errorf("failed to load scheduled actions: %w", err)
	}

	actions := make([]*model.ScheduledAction, 0, len(rows))
	for _, row := range rows {
		payload, err := model.DecodePayload(model.ActionKind(row.Kind), []byte(row.Payload))
		if err != nil {
			log.Printf("Skipping scheduled action %s: %v", row.ID, err)
			continue
		}
		actions = append(actions, &model.ScheduledAction{
			ID:              row.ID,
			Kind:            model.ActionKind(row.Kind),
			Payload:         payload,
			GuildID:         row.GuildID,
			OriginChannelID: row.OriginChannelID,
			ActorID:         row.ActorID,
			CreatedAt:       time.Unix(row.CreatedAt, 0).UTC(),
			DurationSeconds: row.DurationSeconds,
			DueAt:           time.Unix(row.DueAt, 0).UTC(),
		})
	}
	return actions, nil
}

// Close closes the underlying database.
func (s *ActionStore) Close() error {
	return s.db.Close()
}
