package learn

// Profile is the identity the backend exposes for a signed-in learner.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
