package sqlcore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/storage"
)

// PutAttempt stores a graded attempt.
func (c *Core) PutAttempt(ctx context.Context, attempt *learn.Attempt) error {
	if attempt == nil {
		return errors.New("cannot store nil attempt")
	}

	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	query := `INSERT INTO attempts (id, learner, quiz_slug, answers, score, max_score, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = c.db.ExecContext(ctx, c.rebind(query),
		attempt.ID, attempt.Learner, attempt.QuizSlug, string(answers),
		attempt.Score, attempt.MaxScore, stamp(attempt.SubmittedAt))
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	return nil
}

// GetAttempt retrieves an attempt by its ID.
func (c *Core) GetAttempt(ctx context.Context, id string) (*learn.Attempt, error) {
	row := c.db.QueryRowContext(ctx,
		c.rebind(`SELECT id, learner, quiz_slug, answers, score, max_score, submitted_at
			FROM attempts WHERE id = ?`), id)

	attempt, err := scanAttempt(row)
	if err == sql.ErrNoRows {
		return nil, storage.NotFoundError{Kind: "attempt", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("scan attempt: %w", err)
	}

	return attempt, nil
}

// AttemptsByLearner returns a learner's attempts, newest first.
func (c *Core) AttemptsByLearner(ctx context.Context, learner string) ([]*learn.Attempt, error) {
	rows, err := c.db.QueryContext(ctx,
		c.rebind(`SELECT id, learner, quiz_slug, answers, score, max_score, submitted_at
			FROM attempts WHERE learner = ? ORDER BY submitted_at DESC`), learner)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*learn.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}

func scanAttempt(row scanner) (*learn.Attempt, error) {
	var attempt learn.Attempt
	var answers, submittedAt string

	err := row.Scan(&attempt.ID, &attempt.Learner, &attempt.QuizSlug,
		&answers, &attempt.Score, &attempt.MaxScore, &submittedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(answers), &attempt.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if attempt.SubmittedAt, err = parseStamp(submittedAt); err != nil {
		return nil, fmt.Errorf("parse submitted_at: %w", err)
	}

	return &attempt, nil
}
