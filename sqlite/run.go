package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pjanik/skimmer"
)

// Compile-time interface verification.
var _ skimmer.RunService = (*RunService)(nil)

// RunService implements skimmer.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun persists a run and its outcomes in one transaction.
func (s *RunService) CreateRun(ctx context.Context, run *skimmer.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()
	run.URLCount = len(run.Outcomes)
	run.Succeeded, run.Failed = skimmer.CountOutcomes(run.Outcomes)

	schemaJSON, err := json.Marshal(run.Schema)
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, schema_json, url_count, succeeded, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, string(schemaJSON), run.URLCount, run.Succeeded, run.Failed,
		run.CreatedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	for i := range run.Outcomes {
		if err := insertOutcome(ctx, tx, run.ID, &run.Outcomes[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// insertOutcome writes one outcome row within the run's transaction.
func insertOutcome(ctx context.Context, tx *sql.Tx, runID string, o *skimmer.Outcome) error {
	var fieldsJSON string
	if o.Fields != nil {
		data, err := json.Marshal(o.Fields)
		if err != nil {
			return fmt.Errorf("encoding fields for %s: %w", o.URL, err)
		}
		fieldsJSON = string(data)
	}

	var errorCode, errorMessage, errorDetail string
	if o.Failed() {
		errorCode = skimmer.ErrorCode(o.Err)
		errorMessage = skimmer.ErrorMessage(o.Err)
		errorDetail = skimmer.ErrorDetail(o.Err)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, position, url, title, fields_json, truncated, content_hash, tokens, error_code, error_message, error_detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, o.Position, o.URL, o.Title, fieldsJSON, boolToInt(o.Truncated),
		o.ContentHash, o.Tokens, errorCode, errorMessage, errorDetail)
	return err
}

// FindRunByID retrieves a run with its outcomes.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*skimmer.Run, error) {
	var run skimmer.Run
	var schemaJSON, createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, schema_json, url_count, succeeded, failed, created_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &schemaJSON, &run.URLCount, &run.Succeeded, &run.Failed, &createdAt)

	if err == sql.ErrNoRows {
		return nil, skimmer.Errorf(skimmer.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(schemaJSON), &run.Schema); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	run.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}

	run.Outcomes, err = s.findOutcomes(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// findOutcomes loads a run's outcomes in position order.
func (s *RunService) findOutcomes(ctx context.Context, runID string) ([]skimmer.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, url, title, fields_json, truncated, content_hash, tokens, error_code, error_message, error_detail
		FROM outcomes
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []skimmer.Outcome
	for rows.Next() {
		var o skimmer.Outcome
		var fieldsJSON string
		var truncated int
		var errorCode, errorMessage, errorDetail string

		if err := rows.Scan(&o.Position, &o.URL, &o.Title, &fieldsJSON, &truncated,
			&o.ContentHash, &o.Tokens, &errorCode, &errorMessage, &errorDetail); err != nil {
			return nil, err
		}

		o.Truncated = truncated != 0
		if fieldsJSON != "" {
			if err := json.Unmarshal([]byte(fieldsJSON), &o.Fields); err != nil {
				return nil, fmt.Errorf("decoding fields for %s: %w", o.URL, err)
			}
		}
		if errorCode != "" {
			o.Err = &skimmer.Error{Code: errorCode, Message: errorMessage, Detail: errorDetail}
		}

		outcomes = append(outcomes, o)
	}

	return outcomes, rows.Err()
}

// FindRuns retrieves run summaries matching the filter, newest first.
// Outcomes are not populated.
func (s *RunService) FindRuns(ctx context.Context, filter skimmer.RunFilter) ([]*skimmer.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, schema_json, url_count, succeeded, failed, created_at FROM runs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*skimmer.Run
	for rows.Next() {
		var run skimmer.Run
		var schemaJSON, createdAt string

		if err := rows.Scan(&run.ID, &schemaJSON, &run.URLCount, &run.Succeeded, &run.Failed, &createdAt); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(schemaJSON), &run.Schema); err != nil {
			return nil, fmt.Errorf("decoding schema: %w", err)
		}
		run.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// DeleteRun permanently removes a run; its outcomes cascade.
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return skimmer.Errorf(skimmer.ENOTFOUND, "run not found")
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
