package sqlcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyhallco/studyhall/pkg/learn"
)

// PutActivity stores one activity record.
func (c *Core) PutActivity(ctx context.Context, activity *learn.Activity) error {
	if activity == nil {
		return errors.New("cannot store nil activity")
	}

	query := `INSERT INTO activities (id, learner, verb, object, recorded_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx, c.rebind(query),
		activity.ID, activity.Learner, activity.Verb, activity.Object,
		stamp(activity.RecordedAt))
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	return nil
}

// ActivitiesByLearner returns a learner's activity, newest first, capped
// at limit when limit is positive.
func (c *Core) ActivitiesByLearner(ctx context.Context, learner string, limit int) ([]*learn.Activity, error) {
	query := `SELECT id, learner, verb, object, recorded_at
		FROM activities WHERE learner = ? ORDER BY recorded_at DESC`
	args := []any{learner}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, c.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var activities []*learn.Activity
	for rows.Next() {
		var activity learn.Activity
		var recordedAt string

		err := rows.Scan(&activity.ID, &activity.Learner, &activity.Verb,
			&activity.Object, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if activity.RecordedAt, err = parseStamp(recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}

		activities = append(activities, &activity)
	}

	return activities, rows.Err()
}
