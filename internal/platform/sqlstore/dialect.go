package sqlstore

import (
	"strconv"
	"strings"
	"time"
)

// Dialect captures what differs between SQL backends.
type Dialect struct {
	// Name identifies the backend in logs.
	Name string

	// NumberedPlaceholders selects $1, $2, ... instead of '?'.
	NumberedPlaceholders bool

	// SupportsForUpdate enables SELECT ... FOR UPDATE row locks.
	SupportsForUpdate bool

	// MapError translates a driver error into a store sentinel chain. It must
	// return nil for nil and the original error when nothing matches.
	MapError func(err error) error
}

// Rebind rewrites '?' placeholders for the dialect. Queries must not contain
// literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.NumberedPlaceholders {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// mapError applies MapError when configured.
func (d Dialect) mapError(err error) error {
	if err == nil || d.MapError == nil {
		return err
	}
	return d.MapError(err)
}

// forUpdate returns the locking suffix for row reads inside a transaction.
func (d Dialect) forUpdate() string {
	if d.SupportsForUpdate {
		return " FOR UPDATE"
	}
	return ""
}

// dbTime normalizes times to UTC at microsecond precision so every backend
// stores and compares them identically.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
