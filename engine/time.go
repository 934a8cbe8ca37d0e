package engine

import "time"

// nowRFC3339 stamps a report run's generatedAt, isolated in its own
// function so tests can see exactly where wall-clock time enters the
// engine package.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
