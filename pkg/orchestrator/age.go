package orchestrator

import (
	"strings"
	"time"
)

var dobLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// CalculateAge returns whole years between dob and now. Invalid or absent
// dates yield 0.
func CalculateAge(dob string, now time.Time) int {
	dob = strings.TrimSpace(dob)
	if dob == "" {
		return 0
	}

	var birth time.Time
	var parsed bool
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, dob); err == nil {
			birth, parsed = t, true
			break
		}
	}
	if !parsed || birth.After(now) {
		return 0
	}

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
