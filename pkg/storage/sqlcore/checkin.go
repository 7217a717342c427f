package sqlcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyhallco/studyhall/pkg/learn"
)

// PutCheckIn stores a wellness check-in.
func (c *Core) PutCheckIn(ctx context.Context, checkIn *learn.CheckIn) error {
	if checkIn == nil {
		return errors.New("cannot store nil check-in")
	}

	query := `INSERT INTO checkins (id, learner, mood, energy, note, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx, c.rebind(query),
		checkIn.ID, checkIn.Learner, checkIn.Mood, checkIn.Energy,
		checkIn.Note, stamp(checkIn.RecordedAt))
	if err != nil {
		return fmt.Errorf("insert check-in: %w", err)
	}

	return nil
}

// CheckInsByLearner returns a learner's check-ins, newest first.
func (c *Core) CheckInsByLearner(ctx context.Context, learner string) ([]*learn.CheckIn, error) {
	rows, err := c.db.QueryContext(ctx,
		c.rebind(`SELECT id, learner, mood, energy, note, recorded_at
			FROM checkins WHERE learner = ? ORDER BY recorded_at DESC`), learner)
	if err != nil {
		return nil, fmt.Errorf("query check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []*learn.CheckIn
	for rows.Next() {
		var checkIn learn.CheckIn
		var recordedAt string

		err := rows.Scan(&checkIn.ID, &checkIn.Learner, &checkIn.Mood,
			&checkIn.Energy, &checkIn.Note, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		if checkIn.RecordedAt, err = parseStamp(recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}

		checkIns = append(checkIns, &checkIn)
	}

	return checkIns, rows.Err()
}
