package common

import (
	"fmt"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// FormatUptime renders a duration rounded to the second.
func FormatUptime(d time.Duration) string {
	return d.Round(time.Second).String()
}
