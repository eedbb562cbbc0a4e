// Package bytesize parses human-readable byte sizes for config fields
// like the file system's read chunk size, so YAML and environment
// values can say "64Ki" or "1Mi" instead of raw byte counts.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a byte count that unmarshals from strings like "64Ki",
// "500Mi", "100MB", or plain numbers.
//
// Supported suffixes:
//   - none or B: bytes
//   - Ki/KiB, Mi/MiB, Gi/GiB, Ti/TiB: binary units (×1024)
//   - K/KB, M/MB, G/GB, T/TB: decimal units (×1000)
//
// Suffixes are case-insensitive; surrounding whitespace is ignored.
type ByteSize uint64

// Size constants for building ByteSize values in code.
const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// unitFor resolves a (lowercased) suffix to its multiplier.
func unitFor(suffix string) (ByteSize, bool) {
	switch suffix {
	case "", "b":
		return B, true
	case "k", "kb":
		return KB, true
	case "m", "mb":
		return MB, true
	case "g", "gb":
		return GB, true
	case "t", "tb":
		return TB, true
	case "ki", "kib":
		return KiB, true
	case "mi", "mib":
		return MiB, true
	case "gi", "gib":
		return GiB, true
	case "ti", "tib":
		return TiB, true
	default:
		return 0, false
	}
}

// splitNumberUnit cuts s into its leading numeric part and trailing
// unit suffix. ok is false when either part is malformed.
func splitNumberUnit(s string) (num, unit string, ok bool) {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	num = s[:i]
	unit = strings.TrimSpace(s[i:])
	if num == "" || strings.Count(num, ".") > 1 {
		return "", "", false
	}
	for j := 0; j < len(unit); j++ {
		c := unit[j]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return "", "", false
		}
	}
	return num, unit, true
}

// ParseByteSize parses a human-readable byte size string.
func ParseByteSize(s string) (ByteSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	num, unit, ok := splitNumberUnit(trimmed)
	if !ok {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}
	mult, ok := unitFor(strings.ToLower(unit))
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	if strings.Contains(num, ".") {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in byte size: %q", num)
		}
		return ByteSize(f * float64(mult)), nil
	}

	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in byte size: %q", num)
	}
	return ByteSize(n) * mult, nil
}

// UnmarshalText implements encoding.TextUnmarshaler, letting ByteSize
// fields decode directly from config files via mapstructure.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String renders the size in the largest binary unit that fits.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(b))
	}
}

// Uint64 returns the size as a uint64.
func (b ByteSize) Uint64() uint64 {
	return uint64(b)
}

// Int64 returns the size as an int64. Values above math.MaxInt64 wrap.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
