package oracle

import "context"

// Static is a deterministic judge for tests and offline runs.
type Static struct {
	Verdict bool
	Err     error
}

// Judge returns the configured verdict.
func (s Static) Judge(_ context.Context, _ string, _ []string, _ string) (bool, error) {
	return s.Verdict, s.Err
}

// Func adapts a plain function to the judge interface.
type Func func(ctx context.Context, question string, accepted []string, candidate string) (bool, error)

func (f Func) Judge(ctx context.Context, question string, accepted []string, candidate string) (bool, error) {
	return f(ctx, question, accepted, candidate)
}
