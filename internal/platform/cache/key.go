package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyFunc derives a cache key from an operation name and its arguments.
type KeyFunc func(op string, args ...any) string

// DefaultKey joins the operation and normalized arguments with ':'. Strings are
// trimmed and lower-cased so "Josh Allen" and "josh allen " share a slot.
func DefaultKey(op string, args ...any) string {
	var b strings.Builder
	b.WriteString(op)
	for _, arg := range args {
		b.WriteByte(':')
		b.WriteString(normalizeArg(arg))
	}
	return b.String()
}

func normalizeArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	}
}
