package sweeper

import (
	"time"

	"chatops-hq/callisto/pkg/directory"
)

// elapsedDays returns the number of whole days between installedAt and
// now. Partial days are truncated.
func elapsedDays(now, installedAt time.Time) int {
	elapsed := now.Sub(installedAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed.Hours() / 24)
}

// selectEligible returns the records whose installation age strictly
// exceeds thresholdDays. A record at exactly the threshold is kept for
// another cycle.
func selectEligible(records []directory.UserRecord, now time.Time, thresholdDays int) []directory.UserRecord {
	var eligible []directory.UserRecord
	for _, record := range records {
		if elapsedDays(now, record.InstalledAt) > thresholdDays {
			eligible = append(eligible, record)
		}
	}
	return eligible
}
