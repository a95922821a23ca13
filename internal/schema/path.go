package schema

import "strings"

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

// JSONPath joins key-path segments into a gjson/sjson path, escaping the
// characters those libraries treat as syntax.
func JSONPath(parts []string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = pathEscaper.Replace(p)
	}
	return strings.Join(escaped, ".")
}

// WritePath is JSONPath for sjson writes. All-digit and "-1" segments are
// prefixed with ':' so sjson creates object keys instead of array indexes.
func WritePath(parts []string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		if isIndexLike(p) {
			escaped[i] = ":" + p
			continue
		}
		escaped[i] = pathEscaper.Replace(p)
	}
	return strings.Join(escaped, ".")
}

func isIndexLike(segment string) bool {
	if segment == "-1" {
		return true
	}
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
