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

// PutPlan stores a study plan.
func (c *Core) PutPlan(ctx context.Context, plan *learn.Plan) error {
	if plan == nil {
		return errors.New("cannot store nil plan")
	}

	weeks, err := json.Marshal(plan.Weeks)
	if err != nil {
		return fmt.Errorf("marshal weeks: %w", err)
	}

	query := `INSERT INTO plans (id, learner, goal, weeks, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err = c.db.ExecContext(ctx, c.rebind(query),
		plan.ID, plan.Learner, plan.Goal, string(weeks), stamp(plan.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	return nil
}

// GetPlan retrieves a plan by its ID.
func (c *Core) GetPlan(ctx context.Context, id string) (*learn.Plan, error) {
	row := c.db.QueryRowContext(ctx,
		c.rebind(`SELECT id, learner, goal, weeks, created_at FROM plans WHERE id = ?`), id)

	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, storage.NotFoundError{Kind: "plan", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}

	return plan, nil
}

// PlansByLearner returns a learner's plans, newest first.
func (c *Core) PlansByLearner(ctx context.Context, learner string) ([]*learn.Plan, error) {
	rows, err := c.db.QueryContext(ctx,
		c.rebind(`SELECT id, learner, goal, weeks, created_at
			FROM plans WHERE learner = ? ORDER BY created_at DESC`), learner)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var plans []*learn.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

func scanPlan(row scanner) (*learn.Plan, error) {
	var plan learn.Plan
	var weeks, createdAt string

	err := row.Scan(&plan.ID, &plan.Learner, &plan.Goal, &weeks, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(weeks), &plan.Weeks); err != nil {
		return nil, fmt.Errorf("unmarshal weeks: %w", err)
	}
	if plan.CreatedAt, err = parseStamp(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &plan, nil
}
