package workflow

import (
	"context"
	"fmt"

	"github.com/agentbed/testbed/internal/generation"
)

// GenerationStages is the staged pipeline behind a generation job. The
// model call dominates the run, so its band covers most of the bar.
func GenerationStages(gen generation.Generator, req generation.Request) []Stage {
	return []Stage{
		{
			Label:    "Initializing...",
			Progress: 5,
			Run: func(ctx context.Context, state *State) error {
				if req.Kind != generation.KindPersona && req.Kind != generation.KindGoal {
					return fmt.Errorf("unsupported generation kind %q", req.Kind)
				}
				return nil
			},
		},
		{
			Label:    fmt.Sprintf("Generating %s...", req.Kind),
			Progress: 25,
			Run: func(ctx context.Context, state *State) error {
				result, err := gen.Generate(ctx, req)
				if err != nil {
					return fmt.Errorf("generating %s: %w", req.Kind, err)
				}
				state.Result = result
				return nil
			},
		},
		{
			Label:    "Finalizing...",
			Progress: 90,
			Run: func(ctx context.Context, state *State) error {
				if len(state.Result) == 0 {
					return fmt.Errorf("generation returned an empty payload")
				}
				return nil
			},
		},
	}
}
