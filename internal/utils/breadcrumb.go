package utils

import (
	"net/url"
	"strings"
)

// ParseBreadcrumb découpe un chemin de navigation "a/b/c" en segments décodés.
// Les segments vides sont ignorés; un segment non décodable est conservé tel quel.
func ParseBreadcrumb(path string) []string {
	segments := []string{}
	for _, raw := range strings.Split(path, "/") {
		if raw == "" {
			continue
		}
		segment, err := url.PathUnescape(raw)
		if err != nil {
			segment = raw
		}
		segments = append(segments, segment)
	}
	return segments
}

// JoinBreadcrumb sérialise des segments en chemin de navigation,
// chaque segment encodé pour préserver les "/" littéraux
func JoinBreadcrumb(segments []string) string {
	encoded := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		encoded = append(encoded, url.PathEscape(segment))
	}
	return strings.Join(encoded, "/")
}
