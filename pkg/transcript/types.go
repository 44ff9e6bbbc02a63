// Package transcript loads chat transcripts: the ordered messages and date
// separators that the viewer lays out.
package transcript

import (
	"fmt"
	"math"
)

// MaxSize bounds a fixed height or bottom margin, in rows.
const MaxSize = 10000

// Kind distinguishes messages from separators.
type Kind string

const (
	KindMessage   Kind = "message"
	KindSeparator Kind = "separator" // Date header, sticky by default
)

// IsValid returns true for known kinds. Empty means message.
func (k Kind) IsValid() bool {
	switch k {
	case "", KindMessage, KindSeparator:
		return true
	}
	return false
}

// Entry is one row of a transcript.
type Entry struct {
	ID       string `json:"id" yaml:"id"`
	Kind     Kind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Text     string `json:"text" yaml:"text"`
	Markdown bool   `json:"markdown,omitempty" yaml:"markdown,omitempty"`

	// Height fixes the entry's height instead of measuring its text
	Height *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	// BottomMargin overrides the configured gap below the entry
	BottomMargin *float64 `json:"bottom_margin,omitempty" yaml:"bottom_margin,omitempty"`
	// Sticky overrides the default (separators stick, messages don't)
	Sticky *bool `json:"sticky,omitempty" yaml:"sticky,omitempty"`
}

// IsSeparator returns true for date headers.
func (e Entry) IsSeparator() bool {
	return e.Kind == KindSeparator
}

// IsSticky returns whether the entry pins to the top when scrolled past.
func (e Entry) IsSticky() bool {
	if e.Sticky != nil {
		return *e.Sticky
	}
	return e.IsSeparator()
}

// Validate checks that the entry can be laid out.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry ID cannot be empty")
	}
	if !e.Kind.IsValid() {
		return fmt.Errorf("entry %s: invalid kind %q", e.ID, e.Kind)
	}
	if err := checkSize(e.Height); err != nil {
		return fmt.Errorf("entry %s: height %w", e.ID, err)
	}
	if err := checkSize(e.BottomMargin); err != nil {
		return fmt.Errorf("entry %s: bottom_margin %w", e.ID, err)
	}
	return nil
}

func checkSize(v *float64) error {
	switch {
	case v == nil:
		return nil
	case math.IsNaN(*v) || math.IsInf(*v, 0):
		return fmt.Errorf("must be a finite number, got %v", *v)
	case *v < 0:
		return fmt.Errorf("must not be negative, got %v", *v)
	case *v > MaxSize:
		return fmt.Errorf("must not exceed %d, got %v", MaxSize, *v)
	}
	return nil
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	clone := e
	if e.Height != nil {
		v := *e.Height
		clone.Height = &v
	}
	if e.BottomMargin != nil {
		v := *e.BottomMargin
		clone.BottomMargin = &v
	}
	if e.Sticky != nil {
		v := *e.Sticky
		clone.Sticky = &v
	}
	return clone
}
