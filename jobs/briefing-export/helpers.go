package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
)

// startOfDay returns the start time of the given date (00:00:00)
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay returns the end time of the given date (23:59:59.999999999)
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// exportDays lists the days to export, oldest first, ending yesterday.
func exportDays(now time.Time, lookbackDays int) []time.Time {
	days := make([]time.Time, 0, lookbackDays)
	for i := lookbackDays; i >= 1; i-- {
		days = append(days, startOfDay(now.AddDate(0, 0, -i)))
	}
	return days
}

func briefingFileName(date time.Time, officeID string, schemaKey string, format string) string {
	dateStr := date.Format("2006-01-02")
	suffix := ""
	switch format {
	case exporter.FORMAT_WIDE:
		suffix = "wide.csv"
	case exporter.FORMAT_LONG:
		suffix = "long.csv"
	case exporter.FORMAT_JSON:
		suffix = "json.json"
	}
	return fmt.Sprintf("%s##briefings##%s##%s##%s", dateStr, officeID, schemaKey, suffix)
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false
		}
		return false
	}
	return !info.IsDir()
}
