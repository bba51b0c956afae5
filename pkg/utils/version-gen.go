package utils

import (
	"fmt"
	"slices"
	"time"
)

// GenerateSchemaVersion returns the next free "YY-MM-N" version for the
// current month.
func GenerateSchemaVersion(existingVersions []string) string {
	return generateSchemaVersionAt(time.Now(), existingVersions)
}

func generateSchemaVersionAt(t time.Time, existingVersions []string) string {
	date := t.Format("06-01")
	counter := 1
	newID := fmt.Sprintf("%s-%d", date, counter)
	for slices.Contains(existingVersions, newID) {
		counter += 1
		newID = fmt.Sprintf("%s-%d", date, counter)
	}
	return newID
}
