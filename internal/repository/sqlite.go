package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"vidscribe/internal/model"
	"vidscribe/internal/transcript"
)

const schema = `
PRAGMA busy_timeout       = 10000;
PRAGMA journal_mode       = WAL;
PRAGMA synchronous        = NORMAL;
PRAGMA temp_store         = MEMORY;

create table if not exists transcriptions (
	id                 text primary key not null,
	filename           text not null,
	media_kind         text not null,
	source_hash        text not null,
	size_bytes         integer not null default 0,
	stt_provider       text not null,
	language           text not null,
	chunk_length       integer not null,
	status             text not null,
	transcript         text,
	fragments          text,
	error_message      text,
	duration_ms        integer,
	processing_time_ms integer,
	created_at         datetime not null
);

create index if not exists idx_transcriptions_reuse
	on transcriptions (source_hash, stt_provider, language, chunk_length, status);
`

const selectColumns = `
	id, filename, media_kind, source_hash, size_bytes, stt_provider, language,
	chunk_length, status, transcript, fragments, error_message, duration_ms,
	processing_time_ms, created_at
`

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at path
func NewSQLiteRepository(path string) (*sqliteRepository, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return &sqliteRepository{db: db}, nil
}

// Close closes the underlying database
func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

// Create creates a new transcription record
func (r *sqliteRepository) Create(ctx context.Context, t *model.Transcription) error {
	query := `
		INSERT INTO transcriptions (
			id, filename, media_kind, source_hash, size_bytes, stt_provider, language,
			chunk_length, status, transcript, fragments, error_message, duration_ms,
			processing_time_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	fragmentsJSON, err := marshalFragments(t.Fragments)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		t.ID.String(),
		t.Filename,
		t.MediaKind,
		t.SourceHash,
		t.SizeBytes,
		t.Provider,
		t.Language,
		t.ChunkLength,
		t.Status,
		t.Transcript,
		fragmentsJSON,
		t.ErrorMessage,
		t.DurationMs,
		t.ProcessingTimeMs,
		t.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create transcription: %w", err)
	}
	return nil
}

// UpdateResult updates the transcription result. Nil fields keep their
// stored value.
func (r *sqliteRepository) UpdateResult(ctx context.Context, t *model.Transcription) error {
	query := `
		UPDATE transcriptions
		SET
			status = ?,
			transcript = COALESCE(?, transcript),
			fragments = COALESCE(?, fragments),
			error_message = COALESCE(?, error_message),
			duration_ms = COALESCE(?, duration_ms),
			processing_time_ms = COALESCE(?, processing_time_ms)
		WHERE id = ?
	`

	fragmentsJSON, err := marshalFragments(t.Fragments)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query,
		t.Status,
		t.Transcript,
		fragmentsJSON,
		t.ErrorMessage,
		t.DurationMs,
		t.ProcessingTimeMs,
		t.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update transcription: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a transcription by ID
func (r *sqliteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Transcription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transcriptions WHERE id = ?`, id.String())
	t, err := scanTranscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcription: %w", err)
	}
	return t, nil
}

// List retrieves transcriptions newest first with pagination
func (r *sqliteRepository) List(ctx context.Context, limit, offset int) ([]model.Transcription, error) {
	query := `SELECT ` + selectColumns + ` FROM transcriptions ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcriptions: %w", err)
	}
	defer rows.Close()

	var items []model.Transcription
	for rows.Next() {
		t, err := scanTranscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transcription: %w", err)
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return items, nil
}

// FindCompleted returns the newest completed transcription matching the
// content hash, provider, language and chunk length
func (r *sqliteRepository) FindCompleted(ctx context.Context, sourceHash, provider, language string, chunkLength int) (*model.Transcription, error) {
	query := `SELECT ` + selectColumns + ` FROM transcriptions
		WHERE source_hash = ? AND stt_provider = ? AND language = ? AND chunk_length = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, sourceHash, provider, language, chunkLength, model.StatusCompleted)
	t, err := scanTranscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transcription: %w", err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranscription(s scanner) (*model.Transcription, error) {
	var t model.Transcription
	var id string
	var fragmentsJSON sql.NullString
	var createdAt time.Time

	err := s.Scan(
		&id,
		&t.Filename,
		&t.MediaKind,
		&t.SourceHash,
		&t.SizeBytes,
		&t.Provider,
		&t.Language,
		&t.ChunkLength,
		&t.Status,
		&t.Transcript,
		&fragmentsJSON,
		&t.ErrorMessage,
		&t.DurationMs,
		&t.ProcessingTimeMs,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid stored id %q: %w", id, err)
	}
	t.CreatedAt = createdAt

	if fragmentsJSON.Valid && fragmentsJSON.String != "" {
		var frags []transcript.Fragment
		if err := json.Unmarshal([]byte(fragmentsJSON.String), &frags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fragments: %w", err)
		}
		t.Fragments = frags
	}
	return &t, nil
}

func marshalFragments(frags []transcript.Fragment) (*string, error) {
	if frags == nil {
		return nil, nil
	}
	data, err := json.Marshal(frags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fragments: %w", err)
	}
	s := string(data)
	return &s, nil
}
