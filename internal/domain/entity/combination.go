package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Combination naming convention: for n accepted masks, combination i in
// [0, 2^n) is rendered as an n-digit binary string whose most significant
// digit is bit position 0 (the first accepted keyword). Position j emits
// "<j>blur" when its digit is 1 and "<j>" when it is 0; positions are
// joined with "_". The encoding is a bijection with i.
//
// Example for n=2: 0 -> "0_1", 1 -> "0_1blur", 2 -> "0blur_1",
// 3 -> "0blur_1blur".

const blurSuffix = "blur"

// CombinationKey encodes combination i over n bit positions.
func CombinationKey(i, n int) string {
	parts := make([]string, n)
	for j := 0; j < n; j++ {
		if i>>(n-1-j)&1 == 1 {
			parts[j] = strconv.Itoa(j) + blurSuffix
		} else {
			parts[j] = strconv.Itoa(j)
		}
	}
	return strings.Join(parts, "_")
}

// PixelatedBits returns the bit positions set in combination i over n
// positions, in ascending order.
func PixelatedBits(i, n int) []int {
	var bits []int
	for j := 0; j < n; j++ {
		if i>>(n-1-j)&1 == 1 {
			bits = append(bits, j)
		}
	}
	return bits
}

// ParseCombinationKey decodes a combination key back into its integer
// value and bit-position count.
func ParseCombinationKey(key string) (i, n int, err error) {
	if key == "" {
		return 0, 0, nil
	}
	parts := strings.Split(key, "_")
	for j, part := range parts {
		blurred := strings.HasSuffix(part, blurSuffix)
		digits := strings.TrimSuffix(part, blurSuffix)
		pos, convErr := strconv.Atoi(digits)
		if convErr != nil {
			return 0, 0, fmt.Errorf("combination key %q: position %d: %w", key, j, convErr)
		}
		if pos != j {
			return 0, 0, fmt.Errorf("combination key %q: expected position %d, got %d", key, j, pos)
		}
		if blurred {
			i |= 1 << (len(parts) - 1 - j)
		}
	}
	return i, len(parts), nil
}
