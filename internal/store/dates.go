package store

import "time"

// GetToday returns today's date as YYYY-MM-DD.
func GetToday() string {
	return time.Now().Format("2006-01-02")
}

// ValidDate reports whether s is a YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
