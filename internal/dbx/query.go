package dbx

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Placeholders renders n positional parameters starting at $start,
// e.g. Placeholders(2, 3) == "$2, $3, $4".
func Placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}

// Args converts a string slice to a variadic argument list.
func Args(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes LIKE/ILIKE metacharacters so s matches literally
// (used together with ESCAPE '\').
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// IsUUID reports whether id can be bound to a uuid column.
func IsUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ValidUUIDs keeps only the ids that parse as uuids, preserving order.
func ValidUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if IsUUID(id) {
			out = append(out, id)
		}
	}
	return out
}
