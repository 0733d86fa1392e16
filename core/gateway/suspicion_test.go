package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const regularAgent = "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0"

func newTestDetector(store SuspicionStore, clock *stubClock) *Detector {
	d := NewDetector(store, testConfig(), nil, testLogger())
	d.now = clock.now
	return d
}

func TestDetectorCadence(t *testing.T) {
	base := time.Unix(1_000, 0)
	ctx := context.Background()

	t.Run("rapid resubmission is flagged", func(t *testing.T) {
		clock := &stubClock{times: []time.Time{base, base.Add(500 * time.Millisecond)}}
		d := newTestDetector(newFakeSuspicionStore(), clock)

		first, err := d.Check(ctx, testIdentity, ClientMetadata{UserAgent: regularAgent})
		assert.NoError(t, err)
		assert.True(t, first.Allowed)

		second, err := d.Check(ctx, testIdentity, ClientMetadata{UserAgent: regularAgent})
		assert.NoError(t, err)
		assert.False(t, second.Allowed)
		assert.Equal(t, ReasonSuspiciousActivity, second.Reason)
	})

	t.Run("spaced submissions are clean", func(t *testing.T) {
		clock := &stubClock{times: []time.Time{base, base.Add(1200 * time.Millisecond)}}
		d := newTestDetector(newFakeSuspicionStore(), clock)

		first, _ := d.Check(ctx, testIdentity, ClientMetadata{UserAgent: regularAgent})
		assert.True(t, first.Allowed)
		second, _ := d.Check(ctx, testIdentity, ClientMetadata{UserAgent: regularAgent})
		assert.True(t, second.Allowed)
	})

	t.Run("flagged attempt still advances the clock", func(t *testing.T) {
		// t=0 clean, t=0.5s flagged; t=1.2s is 0.7s after the flagged attempt and
		// must be flagged too: retrying does not reset the cadence window
		clock := &stubClock{times: []time.Time{
			base,
			base.Add(500 * time.Millisecond),
			base.Add(1200 * time.Millisecond),
		}}
		d := newTestDetector(newFakeSuspicionStore(), clock)

		first, _ := d.Check(ctx, testIdentity, ClientMetadata{UserAgent: regularAgent})
		assert.True(t, first.Allowed)
		second, _ := d.Check(ctx, testIdentity, ClientMetadata{UserAgent: regularAgent})
		assert.False(t, second.Allowed)
		third, _ := d.Check(ctx, testIdentity, ClientMetadata{UserAgent: regularAgent})
		assert.False(t, third.Allowed)
	})
}

func TestDetectorFingerprint(t *testing.T) {
	base := time.Unix(1_000, 0)
	ctx := context.Background()

	tests := []struct {
		name      string
		userAgent string
		wantClean bool
	}{
		{"regular browser", regularAgent, true},
		{"headless browser", "Mozilla/5.0 HeadlessChrome/119.0", false},
		{"bot", "Googlebot/2.1 (+http://www.google.com/bot.html)", false},
		{"uppercase marker", "MY-BOT/1.0", false},
		{"empty agent", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &stubClock{times: []time.Time{base}}
			d := newTestDetector(newFakeSuspicionStore(), clock)

			got, err := d.Check(ctx, testIdentity, ClientMetadata{UserAgent: tt.userAgent})
			assert.NoError(t, err)
			assert.Equal(t, tt.wantClean, got.Allowed)
		})
	}
}

func TestDetectorAlwaysRecordsAttempt(t *testing.T) {
	store := newFakeSuspicionStore()
	clock := &stubClock{times: []time.Time{time.Unix(1_000, 0)}}
	d := newTestDetector(store, clock)

	// fingerprint-flagged attempt must still swap the timestamp
	got, err := d.Check(context.Background(), testIdentity, ClientMetadata{UserAgent: "bot"})
	assert.NoError(t, err)
	assert.False(t, got.Allowed)
	assert.Equal(t, 1, store.swaps)
}

func TestCustomFingerprintPredicate(t *testing.T) {
	clock := &stubClock{times: []time.Time{time.Unix(1_000, 0)}}
	d := NewDetector(newFakeSuspicionStore(), testConfig(), func(agent string) bool {
		return agent == "curl/8.0"
	}, testLogger())
	d.now = clock.now

	got, err := d.Check(context.Background(), testIdentity, ClientMetadata{UserAgent: "curl/8.0"})
	assert.NoError(t, err)
	assert.False(t, got.Allowed)
}
