// Package importer replays historical learning records from JSONL files
// into storage. Each line is one record tagged with a type; lines that do
// not parse or do not validate are counted and skipped, so one corrupt
// row never sinks an import.
package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/storage"
)

// Record types an import line can carry.
const (
	RecordAttempt = "attempt"
	RecordCheckIn = "checkin"
)

// record is the union shape of one JSONL line.
type record struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Learner string `json:"learner"`

	// Attempt fields.
	QuizSlug    string    `json:"quiz_slug"`
	Answers     []int     `json:"answers"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	SubmittedAt time.Time `json:"submitted_at"`

	// Check-in fields.
	Mood       int       `json:"mood"`
	Energy     int       `json:"energy"`
	Note       string    `json:"note"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Result contains statistics from one import run.
type Result struct {
	Attempts int
	CheckIns int
	Skipped  int
	Lines    int
}

// Summary returns a human-readable summary of the import result.
func (r *Result) Summary() string {
	return fmt.Sprintf("Import complete: %d attempts, %d check-ins (%d of %d lines skipped)",
		r.Attempts, r.CheckIns, r.Skipped, r.Lines)
}

// Importer stores replayed records through a storage driver.
type Importer struct {
	driver storage.Driver
	logger *slog.Logger
}

// NewImporter creates an importer. The caller owns the storage driver.
func NewImporter(driver storage.Driver, log *slog.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{
		driver: driver,
		logger: log,
	}
}

// File imports one JSONL file.
func (im *Importer) File(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	return im.Read(ctx, f)
}

// Read imports JSONL records from r. Blank lines are ignored entirely;
// every other line either stores a record or counts as skipped.
func (im *Importer) Read(ctx context.Context, r io.Reader) (*Result, error) {
	result := &Result{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB max line

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		result.Lines++

		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			im.logger.Warn("skipping malformed import line", "line", line, "error", err)
			result.Skipped++
			continue
		}

		if err := im.store(ctx, &rec, result); err != nil {
			im.logger.Warn("skipping import line", "line", line, "error", err)
			result.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading import data: %w", err)
	}

	return result, nil
}

func (im *Importer) store(ctx context.Context, rec *record, result *Result) error {
	switch rec.Type {
	case RecordAttempt:
		attempt, err := attemptFrom(rec)
		if err != nil {
			return err
		}
		if err := im.driver.PutAttempt(ctx, attempt); err != nil {
			return fmt.Errorf("storing attempt: %w", err)
		}
		result.Attempts++
	case RecordCheckIn:
		checkIn, err := checkInFrom(rec)
		if err != nil {
			return err
		}
		if err := im.driver.PutCheckIn(ctx, checkIn); err != nil {
			return fmt.Errorf("storing check-in: %w", err)
		}
		result.CheckIns++
	default:
		return fmt.Errorf("unknown record type %q", rec.Type)
	}
	return nil
}

// attemptFrom validates an attempt line. Scores are taken as recorded
// rather than regraded: the stored quiz may have changed since, and an
// import replays history, it does not rewrite it.
func attemptFrom(rec *record) (*learn.Attempt, error) {
	if rec.Learner == "" {
		return nil, errors.New("attempt has no learner")
	}
	if rec.QuizSlug == "" {
		return nil, errors.New("attempt has no quiz slug")
	}
	if rec.MaxScore <= 0 {
		return nil, errors.New("attempt has no max score")
	}
	if rec.Score < 0 || rec.Score > rec.MaxScore {
		return nil, fmt.Errorf("attempt score %d out of range 0..%d", rec.Score, rec.MaxScore)
	}
	if rec.SubmittedAt.IsZero() {
		return nil, errors.New("attempt has no submitted_at")
	}

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &learn.Attempt{
		ID:          id,
		Learner:     rec.Learner,
		QuizSlug:    rec.QuizSlug,
		Answers:     rec.Answers,
		Score:       rec.Score,
		MaxScore:    rec.MaxScore,
		SubmittedAt: rec.SubmittedAt.UTC(),
	}, nil
}

func checkInFrom(rec *record) (*learn.CheckIn, error) {
	if rec.Learner == "" {
		return nil, errors.New("check-in has no learner")
	}
	if rec.RecordedAt.IsZero() {
		return nil, errors.New("check-in has no recorded_at")
	}

	checkIn, err := learn.NewCheckIn(rec.Learner, rec.Mood, rec.Energy, rec.Note)
	if err != nil {
		return nil, err
	}
	if rec.ID != "" {
		checkIn.ID = rec.ID
	}
	checkIn.RecordedAt = rec.RecordedAt.UTC()
	return checkIn, nil
}
