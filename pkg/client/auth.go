package client

import (
	"context"
	"errors"
	"os"

	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/learn"
)

// Login signs in with an email and password. On success the server's
// session cookie is captured in the jar; SessionToken then returns the
// token to persist.
func (c *Client) Login(ctx context.Context, email, password string) (*learn.Profile, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var profile learn.Profile
	if err := c.post(ctx, apiPrefix+"/auth/login", body, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout revokes the current session on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, apiPrefix+"/auth/logout", nil, nil)
}

// Me returns the profile of the signed-in learner.
func (c *Client) Me(ctx context.Context) (*learn.Profile, error) {
	var profile learn.Profile
	if err := c.get(ctx, apiPrefix+"/auth/me", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ResolveToken returns the session token to use for a server: the
// credentials.TokenEnvVar environment variable when set, the stored
// credential otherwise. An empty token with a nil error means no session
// is held for that server.
func ResolveToken(creds *credentials.Manager, serverURL string) (string, error) {
	if token := os.Getenv(credentials.TokenEnvVar); token != "" {
		return token, nil
	}
	if creds == nil {
		return "", nil
	}
	return creds.GetToken(serverURL)
}
