package domain

import "fmt"

// Size unit boundaries.
const (
	kilobyte = 1024
	megabyte = 1024 * kilobyte
	gigabyte = 1024 * megabyte
)

// FormatByteSize renders a byte count with human-readable unit scaling
// at 1024-byte boundaries. Values below 1 KB are reported in bytes.
func FormatByteSize(n int64) string {
	switch {
	case n < kilobyte:
		return fmt.Sprintf("%d bytes", n)
	case n < megabyte:
		return fmt.Sprintf("%.1f KB", float64(n)/kilobyte)
	case n < gigabyte:
		return fmt.Sprintf("%.1f MB", float64(n)/megabyte)
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/gigabyte)
	}
}
