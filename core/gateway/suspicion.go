package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
)

// ClientMetadata carries the client-declared attributes the detector inspects.
type ClientMetadata struct {
	UserAgent string
}

// FingerprintPredicate reports whether a client-declared agent string looks
// automated. It is pluggable so stronger fingerprinting can be swapped in without
// touching the detector's control flow.
type FingerprintPredicate func(userAgent string) bool

// DefaultFingerprint flags the usual headless-browser and bot markers.
func DefaultFingerprint(userAgent string) bool {
	agent := strings.ToLower(userAgent)
	return strings.Contains(agent, "headless") || strings.Contains(agent, "bot")
}

// Detector applies heuristic abuse rules to exam-submission attempts.
type Detector struct {
	store       SuspicionStore
	threshold   time.Duration
	ttl         time.Duration
	fingerprint FingerprintPredicate
	logger      core.Logger

	now func() time.Time
}

func NewDetector(store SuspicionStore, conf Config, fingerprint FingerprintPredicate, logger core.Logger) *Detector {
	if fingerprint == nil {
		fingerprint = DefaultFingerprint
	}
	return &Detector{
		store:       store,
		threshold:   conf.CadenceThreshold,
		ttl:         conf.SuspicionTTL,
		fingerprint: fingerprint,
		logger:      logger,
		now:         time.Now,
	}
}

// Check evaluates all rules; any hit flags the attempt. The cadence timestamp is
// updated even for flagged attempts so an attacker cannot reset the clock by
// retrying.
func (d *Detector) Check(ctx context.Context, id ClientIdentity, meta ClientMetadata) (Decision, error) {
	now := d.now()
	last, err := d.store.SwapLastSubmission(ctx, "sus:"+id.Key(), now, d.ttl)
	if err != nil {
		return Decision{}, errors.Wrap(err, "swapping last submission timestamp")
	}

	var flagged bool
	if !last.IsZero() && now.Sub(last) < d.threshold {
		flagged = true
	}
	if d.fingerprint(meta.UserAgent) {
		flagged = true
	}

	if flagged {
		d.logger.Warn("suspicious exam submission blocked", map[string]interface{}{
			"origin": id.Origin, "subject": id.Subject, "userAgent": meta.UserAgent,
		})
		return Deny(ReasonSuspiciousActivity), nil
	}
	return Allow(), nil
}
