package gateway

import "context"

type (
	// Check is one governance stage. It returns a Decision for normal flow and an
	// error only for genuine faults.
	Check func(ctx context.Context, req Request, class OperationClass) (Decision, error)

	// DenyHook observes denials; hooks must not block.
	DenyHook func(req Request, class OperationClass, d Decision)

	// Pipeline composes the governance checks into an ordered chain wrapped around
	// sensitive operations. The first rejection short-circuits the rest.
	Pipeline struct {
		checks []Check
		hooks  []DenyHook
	}
)

// NewPipeline wires the fixed check order: access gate (admin paths only), rate
// limiter, suspicious-activity detector (exam submissions only).
func NewPipeline(gate *AccessGate, limiter *RateLimiter, detector *Detector, hooks ...DenyHook) *Pipeline {
	checks := []Check{
		func(_ context.Context, req Request, _ OperationClass) (Decision, error) {
			if !IsAdminPath(req.Path) {
				return Allow(), nil
			}
			return gate.AuthorizeAdmin(req.Identity()), nil
		},
		func(ctx context.Context, req Request, class OperationClass) (Decision, error) {
			return limiter.Admit(ctx, req.Identity(), class)
		},
		func(ctx context.Context, req Request, class OperationClass) (Decision, error) {
			if class != OpExamSubmission {
				return Allow(), nil
			}
			return detector.Check(ctx, req.Identity(), ClientMetadata{UserAgent: req.UserAgent})
		},
	}
	return &Pipeline{checks: checks, hooks: hooks}
}

// Check runs the chain for one inbound sensitive operation.
func (p *Pipeline) Check(ctx context.Context, req Request) (Decision, error) {
	class := Classify(req.Path)
	for _, check := range p.checks {
		d, err := check(ctx, req, class)
		if err != nil {
			return Decision{}, err
		}
		if !d.Allowed {
			for _, hook := range p.hooks {
				hook(req, class, d)
			}
			return d, nil
		}
	}
	return Allow(), nil
}
