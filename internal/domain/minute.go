package domain

import "time"

// MinuteBucket truncates t to its UTC minute.
func MinuteBucket(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
