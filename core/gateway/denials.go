package gateway

import (
	"sync"
	"time"
)

// Denial is one audit record of a rejected request.
type Denial struct {
	At      time.Time      `json:"at"`
	Origin  string         `json:"origin"`
	Subject string         `json:"subject,omitempty"`
	Path    string         `json:"path"`
	Class   OperationClass `json:"class"`
	Reason  Reason         `json:"reason"`
}

// DenialLog keeps the most recent denials in a fixed-size ring for the admin
// audit endpoint.
type DenialLog struct {
	mutex sync.RWMutex
	ring  []Denial
	next  int
	full  bool
}

func NewDenialLog(capacity int) *DenialLog {
	if capacity <= 0 {
		capacity = 128
	}
	return &DenialLog{ring: make([]Denial, capacity)}
}

// Hook returns a DenyHook recording every denial.
func (l *DenialLog) Hook() DenyHook {
	return func(req Request, class OperationClass, d Decision) {
		id := req.Identity()
		l.record(Denial{
			At:      time.Now().UTC(),
			Origin:  id.Origin,
			Subject: id.Subject,
			Path:    req.Path,
			Class:   class,
			Reason:  d.Reason,
		})
	}
}

func (l *DenialLog) record(d Denial) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.ring[l.next] = d
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
}

// Recent returns up to n denials, newest first.
func (l *DenialLog) Recent(n int) []Denial {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	size := l.next
	if l.full {
		size = len(l.ring)
	}
	if n <= 0 || n > size {
		n = size
	}

	res := make([]Denial, 0, n)
	for i := 1; i <= n; i++ {
		res = append(res, l.ring[(l.next-i+len(l.ring))%len(l.ring)])
	}
	return res
}
