package domain

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

const (
	trackingCodeMin = 1000
	trackingCodeMax = 9999
)

var trackingCodePattern = regexp.MustCompile(`^TM-\d{4}-\d{4}$`)

// CodeSource hands out candidate tracking codes. Candidates are not
// guaranteed unique; storage adapters retry on collision.
type CodeSource interface {
	Next() string
}

// CodeSourceFunc adapts a function to CodeSource.
type CodeSourceFunc func() string

// Next implements CodeSource.
func (f CodeSourceFunc) Next() string { return f() }

// NewTrackingCode formats a code for the given year and serial.
func NewTrackingCode(year, serial int) string {
	return fmt.Sprintf("TM-%04d-%04d", year, serial)
}

// IsTrackingCode reports whether s has the TM-YYYY-NNNN shape.
func IsTrackingCode(s string) bool {
	return trackingCodePattern.MatchString(s)
}

// RandomCodeSource draws serials uniformly from [1000, 9999] for the current year.
type RandomCodeSource struct {
	now func() time.Time
}

// NewRandomCodeSource builds a source using the supplied clock.
func NewRandomCodeSource(now func() time.Time) *RandomCodeSource {
	if now == nil {
		now = time.Now
	}
	return &RandomCodeSource{now: now}
}

// Next implements CodeSource.
func (s *RandomCodeSource) Next() string {
	serial := trackingCodeMin + rand.IntN(trackingCodeMax-trackingCodeMin+1)
	return NewTrackingCode(s.now().UTC().Year(), serial)
}
