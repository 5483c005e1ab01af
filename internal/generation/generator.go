// Package generation calls a chat-completions endpoint to produce
// persona and goal content. It is an external collaborator of the job
// workflow: the tracker only cares that Generate returns a payload or
// an error.
package generation

import (
	"context"
)

const (
	KindPersona = "persona"
	KindGoal    = "goal"
)

// Request describes one generation call.
type Request struct {
	Kind         string
	Requirements string
	Options      map[string]any
}

// Generator produces an opaque result payload for a generation request.
type Generator interface {
	Generate(ctx context.Context, req Request) (map[string]any, error)
}
