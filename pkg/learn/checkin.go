package learn

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CheckIn is an emotional check-in recorded by a learner. Mood and Energy
// are on a 1..5 scale.
type CheckIn struct {
	ID         string    `json:"id"`
	Learner    string    `json:"learner"`
	Mood       int       `json:"mood"`
	Energy     int       `json:"energy"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewCheckIn validates the scales and stamps the check-in.
func NewCheckIn(learner string, mood, energy int, note string) (*CheckIn, error) {
	if mood < 1 || mood > 5 {
		return nil, fmt.Errorf("mood %d out of range 1..5", mood)
	}
	if energy < 1 || energy > 5 {
		return nil, fmt.Errorf("energy %d out of range 1..5", energy)
	}
	return &CheckIn{
		ID:         uuid.NewString(),
		Learner:    learner,
		Mood:       mood,
		Energy:     energy,
		Note:       note,
		RecordedAt: time.Now().UTC(),
	}, nil
}
