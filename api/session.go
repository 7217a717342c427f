package api

import (
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/worker"
)

// DefaultSessionTTL bounds how long a minted session stays valid.
const DefaultSessionTTL = 24 * time.Hour

const (
	// sessionCookie carries the session token between client and server.
	sessionCookie = "studyhall_session"

	// learnerKey is the ctx local requireSession stores the signed-in
	// learner email under.
	learnerKey = "learner"
)

// Account is one login the server accepts.
type Account struct {
	Password string
	Name     string
}

// DemoAccounts returns the built-in accounts matching the demo seed
// learners, so a seeded store works out of the box.
func DemoAccounts() map[string]Account {
	return map[string]Account{
		"ada@example.com":   {Password: "lovelace", Name: "Ada"},
		"grace@example.com": {Password: "hopper", Name: "Grace"},
		"alan@example.com":  {Password: "turing", Name: "Alan"},
	}
}

type session struct {
	learner   string
	expiresAt time.Time
}

// sessionStore tracks minted tokens in memory. Sessions die with the
// process and clients sign in again.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		sessions: make(map[string]session),
	}
}

// mint creates a session for the learner and returns its token.
func (st *sessionStore) mint(learner string) (string, time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()

	token := uuid.NewString()
	expiresAt := time.Now().Add(st.ttl)
	st.sessions[token] = session{learner: learner, expiresAt: expiresAt}

	return token, expiresAt
}

// lookup resolves a token to its learner. Expired sessions are dropped on
// the way out.
func (st *sessionStore) lookup(token string) (string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[token]
	if !ok {
		return "", false
	}
	if time.Now().After(sess.expiresAt) {
		delete(st.sessions, token)
		return "", false
	}

	return sess.learner, true
}

func (st *sessionStore) revoke(token string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, token)
}

// requireSession resolves the session cookie and stores the learner email
// in ctx locals for the handlers further down the chain.
func (s *Server) requireSession(c *fiber.Ctx) error {
	token := c.Cookies(sessionCookie)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "not signed in"})
	}

	learner, ok := s.sessions.lookup(token)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "session expired"})
	}

	c.Locals(learnerKey, learner)
	return c.Next()
}

// learner returns the signed-in learner email stored by requireSession.
func (s *Server) learner(c *fiber.Ctx) string {
	learner, _ := c.Locals(learnerKey).(string)
	return learner
}

// handleLogin checks credentials and mints a session cookie.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	account, ok := s.config.Accounts[email]

	// The compare runs even for unknown emails so response timing does
	// not reveal which emails exist.
	match := subtle.ConstantTimeCompare([]byte(account.Password), []byte(req.Password)) == 1
	if !ok || !match {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid email or password"})
	}

	token, expiresAt := s.sessions.mint(email)
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	s.pool.Enqueue(worker.Job{Activity: learn.NewActivity(email, learn.VerbLogin, "")})
	s.logger.Info("learner signed in", "learner", email)

	return c.JSON(learn.Profile{Email: email, Name: account.Name})
}

// handleLogout revokes the session and clears the cookie.
func (s *Server) handleLogout(c *fiber.Ctx) error {
	if token := c.Cookies(sessionCookie); token != "" {
		s.sessions.revoke(token)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// handleMe returns the profile of the signed-in learner.
func (s *Server) handleMe(c *fiber.Ctx) error {
	email := s.learner(c)
	account := s.config.Accounts[email]

	return c.JSON(learn.Profile{Email: email, Name: account.Name})
}
