package api

import (
	"context"

	"github.com/reclaimed/fyt-engine/probe"
	"github.com/reclaimed/fyt-engine/videoid"
)

// InvalidVideoIDError mirrors probe.InvalidVideoIDError at the API
// boundary; kept distinct so callers of this package never need to import
// the probe package's internal error type directly.
type InvalidVideoIDError struct {
	Input string
}

func (e *InvalidVideoIDError) Error() string { return "invalid video id: " + e.Input }

// Engine is the public entry point: NewEngine(orchestrator) replaces the
// module-level, import-time side effects of the original implementation
// with an explicit constructor that can be instantiated more than once, each
// over an orchestrator built from its own config, in the same process — per
// SPEC_FULL.md §9.
type Engine struct {
	orchestrator *probe.Orchestrator
}

func NewEngine(orchestrator *probe.Orchestrator) *Engine {
	return &Engine{orchestrator: orchestrator}
}

// Generate is the batch entry point: generate(id, includeRaw).
func (e *Engine) Generate(ctx context.Context, rawID string, includeRaw bool) (ResponseEnvelope, error) {
	id, ok := videoid.Parse(rawID)
	if !ok {
		return BadIDEnvelope(rawID), nil
	}
	batch, err := e.orchestrator.Run(ctx, string(id), includeRaw)
	if err != nil {
		return ResponseEnvelope{}, err
	}
	return ResponseEnvelope{
		ID:         string(id),
		Status:     "ok",
		Keys:       batch.Keys,
		Verdict:    batch.Verdict,
		APIVersion: CurrentAPIVersion,
	}, nil
}

// GenerateStream is the streaming entry point: generateStream(id,
// includeRaw). It returns InvalidVideoIDError synchronously for a bad ID,
// per SPEC_FULL.md §4.7 step 1, rather than opening a stream at all.
func (e *Engine) GenerateStream(ctx context.Context, rawID string, includeRaw bool, out chan<- probe.Item) error {
	id, ok := videoid.Parse(rawID)
	if !ok {
		close(out)
		return &InvalidVideoIDError{Input: rawID}
	}
	e.orchestrator.RunStream(ctx, string(id), includeRaw, out)
	return nil
}
