package format

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Elapsed 输出紧凑的耗时描述（12ms / 3s / 4m / 2h / 1d），四舍五入到最大的整单位。
func Elapsed(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d >= day:
		return fmt.Sprintf("%dd", roundTo(d, day))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", roundTo(d, time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%dm", roundTo(d, time.Minute))
	case d >= time.Second:
		return fmt.Sprintf("%ds", roundTo(d, time.Second))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

func roundTo(d, unit time.Duration) int64 {
	return int64(d.Round(unit) / unit)
}
