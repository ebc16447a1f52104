package util

import (
	"fmt"
	"time"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatSize renders a byte count with a binary unit and up to three
// decimals, dropping trailing zeros.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	exp := 0
	div := int64(1)
	for size/div >= unit && exp < len(sizeUnits)-1 {
		div *= unit
		exp++
	}

	whole := size / div
	rem := size % div
	if rem == 0 {
		return fmt.Sprintf("%d %s", whole, sizeUnits[exp])
	}
	frac := rem * 1000 / div
	switch {
	case frac%10 != 0:
		return fmt.Sprintf("%d.%03d %s", whole, frac, sizeUnits[exp])
	case frac%100 != 0:
		return fmt.Sprintf("%d.%02d %s", whole, frac/10, sizeUnits[exp])
	default:
		return fmt.Sprintf("%d.%d %s", whole, frac/100, sizeUnits[exp])
	}
}

// FormatDuration renders d as m:ss, or h:mm:ss from one hour up. Negative
// durations render as 0:00.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
