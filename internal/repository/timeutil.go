package repository

import "time"

// NormalizeUTC converts a stored timestamp to UTC. Columns declared without a
// zone are decoded by pgx in the UTC location, so naive values read as UTC.
func NormalizeUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
