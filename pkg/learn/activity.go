package learn

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a lightweight telemetry record of something a learner did.
// Verb is one of the Verb* constants; Object names the thing acted on
// (a quiz slug, a thread hash, a plan ID).
type Activity struct {
	ID         string    `json:"id"`
	Learner    string    `json:"learner"`
	Verb       string    `json:"verb"`
	Object     string    `json:"object,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Verbs recorded by the platform.
const (
	VerbLogin         = "login"
	VerbQuizStarted   = "quiz_started"
	VerbQuizSubmitted = "quiz_submitted"
	VerbChat          = "chat"
	VerbCheckIn       = "checkin"
	VerbPlanGenerated = "plan_generated"
)

// NewActivity stamps an activity record.
func NewActivity(learner, verb, object string) *Activity {
	return &Activity{
		ID:         uuid.NewString(),
		Learner:    learner,
		Verb:       verb,
		Object:     object,
		RecordedAt: time.Now().UTC(),
	}
}
