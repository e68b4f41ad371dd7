package database

import "strings"

// normalizeGUID strips the scheme and host of a GUID so only the path (and
// query) remain, letting the same item match across hosts. The tail keeps
// its original bytes; a fragment is dropped.
func normalizeGUID(guid string) string {
	guid = strings.TrimSpace(guid)

	var rest string
	switch {
	case strings.HasPrefix(guid, "//"):
		rest = guid[2:]
	case hasScheme(guid):
		rest = guid[strings.Index(guid, "://")+3:]
	default:
		return guid
	}

	// Everything up to the first '/', '?' or '#' is the authority.
	i := strings.IndexAny(rest, "/?#")
	if i < 0 {
		return ""
	}
	tail := rest[i:]
	if j := strings.IndexByte(tail, '#'); j >= 0 {
		tail = tail[:j]
	}
	return tail
}

// hasScheme reports whether s starts with "scheme://".
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for k, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case k > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// likeEscape is the ESCAPE character of suffix LIKE patterns.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// suffixPattern matches any value ending with s.
func suffixPattern(s string) string {
	return "%" + likeReplacer.Replace(s)
}
