package utils

import (
	"fmt"
	"time"
)

// FormatBytes renders a byte count as a human-readable size, e.g. "4.2 MB".
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatSpeed renders a bytes-per-second rate, e.g. "4.2 MB/s".
func FormatSpeed(bytesPerSecond float64) string {
	return FormatBytes(int64(bytesPerSecond)) + "/s"
}

// FormatDuration rounds a duration to whole seconds for display, e.g. "3m12s".
func FormatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
