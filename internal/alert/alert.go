// Package alert rings the local terminal bell when availability is found.
package alert

import (
	"io"
	"strings"
	"sync"
)

// Kind distinguishes the two alert sounds.
type Kind int

const (
	// Found sounds whenever a poll returns any availability.
	Found Kind = iota
	// Changed sounds when a poll's results differ from the previous snapshot.
	Changed
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Sounder plays an alert. Implementations must not block for long.
type Sounder interface {
	Sound(kind Kind)
}

// Bell writes ASCII BEL characters to a terminal: one for Found, three for Changed.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell returns a Bell writing to w, usually os.Stdout.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Sound(kind Kind) {
	n := 1
	if kind == Changed {
		n = 3
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	io.WriteString(b.w, strings.Repeat("\a", n)) //nolint:errcheck // fire-and-forget
}

// Policy decides which alerts the operator has silenced.
type Policy struct {
	Quiet    bool // silence Found only
	QuietAll bool // silence everything
}

// Allows reports whether kind should sound under this policy.
func (p Policy) Allows(kind Kind) bool {
	if p.QuietAll {
		return false
	}
	return kind != Found || !p.Quiet
}

// Filtered wraps a Sounder and drops alerts the policy silences.
type Filtered struct {
	inner  Sounder
	policy Policy
}

// NewFiltered returns a Sounder that applies policy before delegating to inner.
func NewFiltered(inner Sounder, policy Policy) *Filtered {
	return &Filtered{inner: inner, policy: policy}
}

func (f *Filtered) Sound(kind Kind) {
	if f.policy.Allows(kind) {
		f.inner.Sound(kind)
	}
}
