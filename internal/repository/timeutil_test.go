package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUTC(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"zero stays zero", time.Time{}, time.Time{}},
		{"naive column value reads as utc", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"offset converted", time.Date(2026, 3, 1, 5, 30, 0, 0, lima), time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeUTC(tc.in)
			assert.True(t, tc.want.Equal(got))
			if !tc.in.IsZero() {
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}
