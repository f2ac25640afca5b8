package utils

import "time"

// UnixSecondsToIsoFormat renders a note or redemption timestamp for display.
func UnixSecondsToIsoFormat(seconds uint64) string {
	return time.Unix(int64(seconds), 0).UTC().Format(time.RFC3339)
}
