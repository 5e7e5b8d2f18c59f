// Package format turns raw numbers into the short human-readable strings used
// by directory listings and access logs.
package format

import "github.com/dustin/go-humanize"

// 以 1024 为基数的单位表，顺序即放大顺序。
var sizeUnits = []struct {
	suffix string
	scale  float64
}{
	{"bytes", 1},
	{"kb", 1 << 10},
	{"mb", 1 << 20},
	{"gb", 1 << 30},
	{"tb", 1 << 40},
	{"pb", 1 << 50},
}

// Size 选择缩放后仍 >= 1 的最大单位：bytes 输出整数，其余单位保留两位小数，
// 整数部分插入千分位，例如 "10 bytes"、"2.00 mb"、"1,536.00 pb"。
func Size(bytes int64) string {
	if bytes <= 0 {
		return "0 bytes"
	}
	value := float64(bytes)
	unit := 0
	for i, u := range sizeUnits {
		if value/u.scale >= 1 {
			unit = i
		}
	}
	if unit == 0 {
		return humanize.Comma(bytes) + " " + sizeUnits[0].suffix
	}
	scaled := value / sizeUnits[unit].scale
	return humanize.FormatFloat("#,###.##", scaled) + " " + sizeUnits[unit].suffix
}
