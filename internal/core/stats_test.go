package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librarium-app/librarium/internal/core"
)

func Test_ComputeUserStats(t *testing.T) {
	testCases := []struct {
		name               string
		currentlyIssued    int
		totalIssued        int
		totalReturned      int
		expectedReturnRate int
	}{
		{
			name:               "zero issued yields zero rate, no division by zero",
			currentlyIssued:    0,
			totalIssued:        0,
			totalReturned:      0,
			expectedReturnRate: 0,
		},
		{
			name:               "all returned",
			currentlyIssued:    0,
			totalIssued:        4,
			totalReturned:      4,
			expectedReturnRate: 100,
		},
		{
			name:               "two of three returned rounds to 67",
			currentlyIssued:    1,
			totalIssued:        3,
			totalReturned:      2,
			expectedReturnRate: 67,
		},
		{
			name:               "one of three returned rounds to 33",
			currentlyIssued:    2,
			totalIssued:        3,
			totalReturned:      1,
			expectedReturnRate: 33,
		},
		{
			name:               "one of two returned",
			currentlyIssued:    1,
			totalIssued:        2,
			totalReturned:      1,
			expectedReturnRate: 50,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stats := core.ComputeUserStats(tc.currentlyIssued, tc.totalIssued, tc.totalReturned)

			assert.Equal(t, tc.currentlyIssued, stats.CurrentlyIssued)
			assert.Equal(t, tc.totalIssued, stats.TotalIssued)
			assert.Equal(t, tc.totalReturned, stats.TotalReturned)
			assert.Equal(t, tc.expectedReturnRate, stats.ReturnRate)
		})
	}
}
