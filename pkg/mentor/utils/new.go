// Package mentorutils is the mentor utility package
package mentorutils

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/studyhallco/studyhall/pkg/mentor"
	"github.com/studyhallco/studyhall/pkg/mentor/remote"
	"github.com/studyhallco/studyhall/pkg/mentor/scripted"
)

type NewEngineOpts struct {
	// Kind selects the engine, one of mentor.SupportedEngines.
	Kind string

	// UpstreamURL locates the external service for the remote engine.
	UpstreamURL string

	// Delay paces the scripted engine's chunks.
	Delay time.Duration

	Logger *slog.Logger
}

func NewEngine(o *NewEngineOpts) (mentor.Engine, error) {
	switch o.Kind {
	case mentor.EngineScripted:
		return scripted.NewEngine(scripted.Config{Delay: o.Delay}), nil
	case mentor.EngineRemote:
		return remote.NewEngine(remote.Config{UpstreamURL: o.UpstreamURL}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported mentor engine: %s (supported: %v)", o.Kind, mentor.SupportedEngines())
	}
}
