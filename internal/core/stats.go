package core

import (
	"math"
)

// OverviewStats are the catalog-wide counts shown on the admin dashboard.
// They are recomputed on every request; there is no caching to invalidate.
type OverviewStats struct {
	TotalBooks      int
	AvailableBooks  int
	IssuedBooks     int
	TotalUsers      int
	PendingRequests int
}

// UserStats are the per-user issuance figures shown on the home page and the
// admin user-stats report.
type UserStats struct {
	CurrentlyIssued int
	TotalIssued     int
	TotalReturned   int
	ReturnRate      int // percentage, rounded
}

// ComputeUserStats derives per-user figures from plain counts.
// ReturnRate is round(100 * returned / issued), or 0 when issued is 0.
func ComputeUserStats(currentlyIssued, totalIssued, totalReturned int) UserStats {
	returnRate := 0
	if totalIssued > 0 {
		returnRate = int(math.Round(100 * float64(totalReturned) / float64(totalIssued)))
	}

	return UserStats{
		CurrentlyIssued: currentlyIssued,
		TotalIssued:     totalIssued,
		TotalReturned:   totalReturned,
		ReturnRate:      returnRate,
	}
}
