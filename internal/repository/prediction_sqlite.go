package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"accidentsev/internal/model"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const predictionSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	inputs      TEXT NOT NULL DEFAULT '{}',
	result      TEXT,
	error       TEXT NOT NULL DEFAULT '',
	model_name  TEXT NOT NULL DEFAULT '',
	latency_ms  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_session ON predictions (session_id, created_at);
`

// createdAtLayout is fixed width so that text order is time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type predictionRow struct {
	ID        string         `db:"id"`
	SessionID string         `db:"session_id"`
	Status    string         `db:"status"`
	Inputs    string         `db:"inputs"`
	Result    sql.NullString `db:"result"`
	Error     string         `db:"error"`
	ModelName string         `db:"model_name"`
	LatencyMS int64          `db:"latency_ms"`
	CreatedAt string         `db:"created_at"`
}

// SQLitePredictionRepo is the single-file prediction store
type SQLitePredictionRepo struct {
	db *sqlx.DB
}

func NewSQLitePredictionRepo(dbPath string) (*SQLitePredictionRepo, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(predictionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLitePredictionRepo{db: db}, nil
}

func (r *SQLitePredictionRepo) Close() error {
	return r.db.Close()
}

func (r *SQLitePredictionRepo) Save(ctx context.Context, rec *model.PredictionRecord) error {
	inputs, err := json.Marshal(rec.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	row := predictionRow{
		ID:        rec.ID,
		SessionID: rec.SessionID,
		Status:    string(rec.Status),
		Inputs:    string(inputs),
		Error:     rec.Error,
		ModelName: rec.ModelName,
		LatencyMS: rec.LatencyMS,
		CreatedAt: rec.CreatedAt.UTC().Format(createdAtLayout),
	}
	if rec.Result != nil {
		result, err := json.Marshal(rec.Result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		row.Result = sql.NullString{String: string(result), Valid: true}
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO predictions
			(id, session_id, status, inputs, result, error, model_name, latency_ms, created_at)
		VALUES
			(:id, :session_id, :status, :inputs, :result, :error, :model_name, :latency_ms, :created_at)`, row)
	return err
}

func (r *SQLitePredictionRepo) Get(ctx context.Context, id string) (*model.PredictionRecord, error) {
	var row predictionRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM predictions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SQLitePredictionRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.PredictionRecord, error) {
	var rows []predictionRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM predictions WHERE session_id = ? ORDER BY created_at DESC LIMIT ?", sessionID, limit)
	if err != nil {
		return nil, err
	}
	records := make([]model.PredictionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (row predictionRow) record() (model.PredictionRecord, error) {
	rec := model.PredictionRecord{
		ID:        row.ID,
		SessionID: row.SessionID,
		Status:    model.PredictionStatus(row.Status),
		Error:     row.Error,
		ModelName: row.ModelName,
		LatencyMS: row.LatencyMS,
	}
	if err := json.Unmarshal([]byte(row.Inputs), &rec.Inputs); err != nil {
		return rec, fmt.Errorf("prediction %s: decode inputs: %w", row.ID, err)
	}
	if row.Result.Valid {
		var res model.PredictionResult
		if err := json.Unmarshal([]byte(row.Result.String), &res); err != nil {
			return rec, fmt.Errorf("prediction %s: decode result: %w", row.ID, err)
		}
		rec.Result = &res
	}
	created, err := time.Parse(createdAtLayout, row.CreatedAt)
	if err != nil {
		return rec, fmt.Errorf("prediction %s: parse created_at: %w", row.ID, err)
	}
	rec.CreatedAt = created
	return rec, nil
}
