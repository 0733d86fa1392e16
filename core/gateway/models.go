package gateway

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// OperationClass categorizes a sensitive operation; it selects the quota and the
// heuristics that apply to it.
type OperationClass string

const (
	OpLogin          OperationClass = "login"
	OpRegistration   OperationClass = "registration"
	OpExamSubmission OperationClass = "exam-submission"
	OpGenericAPI     OperationClass = "generic-api"
	OpOther          OperationClass = "other"
)

// Reason identifies why a request was denied.
type Reason string

const (
	ReasonRateLimited        Reason = "RATE_LIMITED"
	ReasonSuspiciousActivity Reason = "SUSPICIOUS_ACTIVITY"
	ReasonIPNotWhitelisted   Reason = "IP_NOT_WHITELISTED"
)

const anonymousSubject = "anonymous"

// ClientIdentity is the (origin, optional subject) pair governance state is keyed by.
// It is a grouping key, never a security-grade authenticator.
type ClientIdentity struct {
	Origin  string
	Subject string
}

// Key derives the governance state key. The separator must be a character that
// cannot occur in an origin address; ":" would collide on IPv6 origins.
func (id ClientIdentity) Key() string {
	subject := id.Subject
	if subject == "" {
		subject = anonymousSubject
	}
	return id.Origin + "|" + subject
}

// Request is the abstract sensitive-operation descriptor handed in by the boundary
// layer; the pipeline never sees transport-level artifacts.
type Request struct {
	Path           string // path or intent
	Origin         string // peer address
	ForwardedChain string // trusted-proxy header chain, comma-separated, may be empty
	Subject        string // authenticated subject, may be empty
	UserAgent      string
}

// Identity resolves the client identity, preferring the first hop of the forwarded
// chain over the peer address.
func (r Request) Identity() ClientIdentity {
	origin := r.Origin
	if r.ForwardedChain != "" {
		origin = strings.TrimSpace(strings.SplitN(r.ForwardedChain, ",", 2)[0])
	}
	return ClientIdentity{Origin: origin, Subject: r.Subject}
}

// Decision is the outcome of a governance check. Checks return decisions for normal
// flow; errors are reserved for genuine faults (store unreachable etc.).
type Decision struct {
	Allowed    bool
	Reason     Reason
	RetryAfter time.Duration // only set for ReasonRateLimited
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason Reason) Decision { return Decision{Reason: reason} }

func DenyRateLimited(retryAfter time.Duration) Decision {
	return Decision{Reason: ReasonRateLimited, RetryAfter: retryAfter}
}

// Config carries every governance knob; it is passed in at construction time.
type Config struct {
	Window           time.Duration
	Quotas           map[OperationClass]int64
	CadenceThreshold time.Duration
	SuspicionTTL     time.Duration
	TrustedOrigins   []string
}

// DefaultConfig returns the documented defaults: 60s windows, per-class quotas
// login=5 registration=3 exam-submission=10 generic-api=60 other=100, 1s cadence,
// 5min suspicion TTL and a loopback-only admin allow-list.
func DefaultConfig() Config {
	return Config{
		Window: time.Minute,
		Quotas: map[OperationClass]int64{
			OpLogin:          5,
			OpRegistration:   3,
			OpExamSubmission: 10,
			OpGenericAPI:     60,
			OpOther:          100,
		},
		CadenceThreshold: time.Second,
		SuspicionTTL:     5 * time.Minute,
		TrustedOrigins:   []string{"127.0.0.1", "::1", "localhost"},
	}
}

// Validate enforces the static config invariants: positive window and quotas.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return errors.New("gateway: window must be positive")
	}
	if c.CadenceThreshold <= 0 {
		return errors.New("gateway: cadence threshold must be positive")
	}
	if c.SuspicionTTL <= 0 {
		return errors.New("gateway: suspicion TTL must be positive")
	}
	for class, limit := range c.Quotas {
		if limit <= 0 {
			return errors.Errorf("gateway: quota for %q must be positive", class)
		}
	}
	return nil
}
