package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format returns a period string like "2025-08".
func Format(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Parse parses "2025-08" into year and month.
func Parse(p string) (year, month int, err error) {
	parts := strings.SplitN(p, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid period format: %q", p)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in period %q: %w", p, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in period %q: %w", p, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month out of range in period %q", p)
	}

	return year, month, nil
}

// YearRange returns the closed calendar bounds [Jan 1, Dec 31] of a year.
func YearRange(year int) (start, end time.Time) {
	start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}
