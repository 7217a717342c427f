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

// PutQuiz upserts a quiz by slug. Returns true if the slug was newly
// inserted.
func (c *Core) PutQuiz(ctx context.Context, quiz *learn.Quiz) (bool, error) {
	if quiz == nil {
		return false, errors.New("cannot store nil quiz")
	}

	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return false, fmt.Errorf("marshal questions: %w", err)
	}

	var one int
	err = c.db.QueryRowContext(ctx,
		c.rebind(`SELECT 1 FROM quizzes WHERE slug = ? LIMIT 1`), quiz.Slug,
	).Scan(&one)
	existed := err == nil
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("check quiz: %w", err)
	}

	query := `INSERT INTO quizzes (slug, title, topic, difficulty, questions)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			title = excluded.title,
			topic = excluded.topic,
			difficulty = excluded.difficulty,
			questions = excluded.questions`

	_, err = c.db.ExecContext(ctx, c.rebind(query),
		quiz.Slug, quiz.Title, quiz.Topic, quiz.Difficulty, string(questions))
	if err != nil {
		return false, fmt.Errorf("upsert quiz: %w", err)
	}

	return !existed, nil
}

// GetQuiz retrieves a quiz by its slug.
func (c *Core) GetQuiz(ctx context.Context, slug string) (*learn.Quiz, error) {
	row := c.db.QueryRowContext(ctx,
		c.rebind(`SELECT slug, title, topic, difficulty, questions FROM quizzes WHERE slug = ?`),
		slug)

	quiz, err := scanQuiz(row)
	if err == sql.ErrNoRows {
		return nil, storage.NotFoundError{Kind: "quiz", Key: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("scan quiz: %w", err)
	}

	return quiz, nil
}

// ListQuizzes returns all quizzes ordered by slug.
func (c *Core) ListQuizzes(ctx context.Context) ([]*learn.Quiz, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT slug, title, topic, difficulty, questions FROM quizzes ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []*learn.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}

	return quizzes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row scanner) (*learn.Quiz, error) {
	var quiz learn.Quiz
	var questions string

	if err := row.Scan(&quiz.Slug, &quiz.Title, &quiz.Topic, &quiz.Difficulty, &questions); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(questions), &quiz.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}

	return &quiz, nil
}
