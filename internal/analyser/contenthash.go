package analyser

import (
	"fmt"
	"time"
)

// isoMillis is the ISO-8601 layout used for date fingerprints.
const isoMillis = "2006-01-02T15:04:05.000Z"

// contentHash turns a modification marker into a comparable string.
// Dates become ISO-8601 UTC; anything else is an opaque token passed through
// as text. NULL yields "".
func contentHash(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.UTC().Format(isoMillis)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format(isoMillis)
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
