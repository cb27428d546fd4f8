package blob

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RandomSuffix returns a 10 character disambiguator for archive keys.
func RandomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// DatedKey builds "<prefix>/<YYYY-MM-DD>_<parts...>_<suffix><ext>". Parts are
// sanitized so caller supplied identifiers cannot add path segments.
func DatedKey(prefix string, at time.Time, suffix, ext string, parts ...string) string {
	name := []string{at.UTC().Format("2006-01-02")}
	for _, p := range parts {
		if p = sanitize(p); p != "" {
			name = append(name, p)
		}
	}
	name = append(name, suffix)
	return path.Join("/", prefix, strings.Join(name, "_")+ext)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, s)
}
