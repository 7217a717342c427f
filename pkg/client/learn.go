package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/studyhallco/studyhall/pkg/analytics"
	"github.com/studyhallco/studyhall/pkg/learn"
)

// Quizzes lists the published quizzes.
func (c *Client) Quizzes(ctx context.Context) ([]learn.QuizSummary, error) {
	var out struct {
		Quizzes []learn.QuizSummary `json:"quizzes"`
		Count   int                 `json:"count"`
	}
	if err := c.get(ctx, apiPrefix+"/quizzes", &out); err != nil {
		return nil, err
	}
	return out.Quizzes, nil
}

// Quiz fetches one quiz by slug, answers withheld.
func (c *Client) Quiz(ctx context.Context, slug string) (*learn.QuizView, error) {
	if slug == "" {
		return nil, errors.New("quiz slug is required")
	}

	var view learn.QuizView
	if err := c.get(ctx, apiPrefix+"/quizzes/"+url.PathEscape(slug), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SubmitAttempt submits answers for a quiz and returns the graded attempt.
func (c *Client) SubmitAttempt(ctx context.Context, slug string, answers []int) (*learn.Attempt, error) {
	if slug == "" {
		return nil, errors.New("quiz slug is required")
	}

	body := struct {
		Answers []int `json:"answers"`
	}{Answers: answers}

	var attempt learn.Attempt
	if err := c.post(ctx, apiPrefix+"/quizzes/"+url.PathEscape(slug)+"/attempts", body, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Attempts lists the signed-in learner's attempts, newest first.
func (c *Client) Attempts(ctx context.Context) ([]*learn.Attempt, error) {
	var out struct {
		Attempts []*learn.Attempt `json:"attempts"`
		Count    int              `json:"count"`
	}
	if err := c.get(ctx, apiPrefix+"/attempts", &out); err != nil {
		return nil, err
	}
	return out.Attempts, nil
}

// CheckIn records a mood and energy check-in for the signed-in learner.
func (c *Client) CheckIn(ctx context.Context, mood, energy int, note string) (*learn.CheckIn, error) {
	body := struct {
		Mood   int    `json:"mood"`
		Energy int    `json:"energy"`
		Note   string `json:"note,omitempty"`
	}{Mood: mood, Energy: energy, Note: note}

	var checkIn learn.CheckIn
	if err := c.post(ctx, apiPrefix+"/checkins", body, &checkIn); err != nil {
		return nil, err
	}
	return &checkIn, nil
}

// CheckIns lists the signed-in learner's check-ins, newest first.
func (c *Client) CheckIns(ctx context.Context) ([]*learn.CheckIn, error) {
	var out struct {
		CheckIns []*learn.CheckIn `json:"check_ins"`
		Count    int              `json:"count"`
	}
	if err := c.get(ctx, apiPrefix+"/checkins", &out); err != nil {
		return nil, err
	}
	return out.CheckIns, nil
}

// RecordActivity reports one telemetry record. The server batches the
// write; a nil error means accepted, not yet durable.
func (c *Client) RecordActivity(ctx context.Context, verb, object string) error {
	if verb == "" {
		return errors.New("activity verb is required")
	}

	body := struct {
		Verb   string `json:"verb"`
		Object string `json:"object,omitempty"`
	}{Verb: verb, Object: object}

	return c.post(ctx, apiPrefix+"/activity", body, nil)
}

// Progress fetches the cross-learner analytics overview.
func (c *Client) Progress(ctx context.Context) (*analytics.Overview, error) {
	var overview analytics.Overview
	if err := c.get(ctx, apiPrefix+"/progress", &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// LearnerProgress fetches the signed-in learner's progress detail.
func (c *Client) LearnerProgress(ctx context.Context) (*analytics.LearnerDetail, error) {
	var detail analytics.LearnerDetail
	if err := c.get(ctx, apiPrefix+"/progress/learner", &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Plans lists the signed-in learner's persisted curriculum plans, newest
// first.
func (c *Client) Plans(ctx context.Context) ([]*learn.Plan, error) {
	var out struct {
		Plans []*learn.Plan `json:"plans"`
		Count int           `json:"count"`
	}
	if err := c.get(ctx, apiPrefix+"/plans", &out); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

// Plan fetches one persisted plan by ID.
func (c *Client) Plan(ctx context.Context, id string) (*learn.Plan, error) {
	if id == "" {
		return nil, errors.New("plan ID is required")
	}

	var plan learn.Plan
	if err := c.get(ctx, fmt.Sprintf("%s/plans/%s", apiPrefix, url.PathEscape(id)), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
