package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/heaplab/pkg/value"
	"github.com/zurustar/heaplab/pkg/vm"
)

// FormatValue renders v for display in the given base (10 or 16). Void
// renders as the empty string.
func FormatValue(v vm.RuntimeValue, base int) string {
	if v.IsVoid() {
		return ""
	}
	if fn, ok := v.Function(); ok {
		return fn.String()
	}

	lit, ok := v.Literal()
	if !ok {
		return v.String()
	}

	switch v.Type() {
	case value.TypeInt:
		n, _ := lit.AsInt()
		return formatInt(n, base)
	case value.TypeChar:
		c, _ := lit.AsChar()
		return fmt.Sprintf("%s (%s)", value.QuoteChar(c), formatInt(int64(c), base))
	case value.TypeDouble:
		d, _ := lit.AsDouble()
		return strconv.FormatFloat(d, 'g', -1, 64)
	case value.TypeString:
		s, _ := lit.AsString()
		return value.QuoteString(s)
	case value.TypeIntPtr, value.TypeCharPtr:
		n, _ := lit.AsInt()
		digits := 1
		if base == 16 {
			digits = 2
		}
		return fmt.Sprintf("%s %s", v.Type(), formatAddress(n, base, digits))
	}
	return v.String()
}

func formatInt(n int64, base int) string {
	if base != 16 {
		return strconv.FormatInt(n, 10)
	}
	if n < 0 {
		// -(MinInt64) overflows; format the magnitude as unsigned.
		return "-0x" + strconv.FormatUint(uint64(-(n+1))+1, 16)
	}
	return "0x" + strconv.FormatInt(n, 16)
}

// formatAddress renders an address zero-padded to digits.
func formatAddress(n int64, base, digits int) string {
	if n < 0 {
		return formatInt(n, base)
	}
	if base != 16 {
		return fmt.Sprintf("%0*d", digits, n)
	}
	return fmt.Sprintf("0x%0*x", digits, n)
}

// FormatHeap renders heap bytes as rows of width bytes, each row prefixed
// with its start address. Base 16 prints two hex digits per byte, base 10
// three decimal digits.
func FormatHeap(heap []byte, base, width int) string {
	if width <= 0 {
		width = 16
	}

	radix := 10
	if base == 16 {
		radix = 16
	}
	addrDigits := max(len(strconv.FormatInt(int64(max(len(heap)-1, 0)), radix)), 2)

	var b strings.Builder
	for start := 0; start < len(heap); start += width {
		end := min(start+width, len(heap))
		b.WriteString(formatAddress(int64(start), base, addrDigits))
		b.WriteByte(':')
		for _, c := range heap[start:end] {
			if base == 16 {
				fmt.Fprintf(&b, " %02x", c)
			} else {
				fmt.Fprintf(&b, " %3d", c)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatRegions lists reserved heap regions, one per line.
func FormatRegions(regions []vm.Region, base int) string {
	if len(regions) == 0 {
		return "no allocations"
	}
	var b strings.Builder
	for i, r := range regions {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s-%s (%d bytes)",
			formatAddress(r.Start, base, 2), formatAddress(r.End()-1, base, 2), r.Size)
	}
	return b.String()
}
