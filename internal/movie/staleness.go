package movie

import "time"

const (
	// baseTTL applies to records without a release date and is the floor for
	// everything released more than a week ago.
	baseTTL = 48 * time.Hour

	// freshReleaseTTL applies during the first week after release, when
	// ratings and posters churn fastest.
	freshReleaseTTL = 24 * time.Hour

	// agingStep extends the TTL for every whole year since release. Old
	// movies are effectively static.
	agingStep = 120 * time.Hour

	freshReleaseWindow = 7 * 24 * time.Hour
)

// TTL computes how long a cached record stays valid given its release date.
// The age scaling truncates to whole years, matching the step behavior of
// the data it was tuned against.
func TTL(releaseDate *time.Time, now time.Time) time.Duration {
	if releaseDate == nil {
		return baseTTL
	}
	age := now.Sub(*releaseDate)
	if age < freshReleaseWindow {
		return freshReleaseTTL
	}
	years := int(age.Hours() / 24 / 365)
	return baseTTL + time.Duration(years)*agingStep
}

// IsStale reports whether the record's last refresh is older than its TTL.
func IsStale(m *Movie, now time.Time) bool {
	return m.LastRefreshedAt.Before(now.Add(-TTL(m.ReleaseDate, now)))
}
