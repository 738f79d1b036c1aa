package repository

import "strings"

// Tags are persisted as a single comma-delimited string. These helpers are
// the only place that format exists: everything above the repository sees
// the canonical []string representation.

func joinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if v := strings.TrimSpace(t); v != "" {
			clean = append(clean, v)
		}
	}
	return strings.Join(clean, ",")
}

func splitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			tags = append(tags, v)
		}
	}
	return tags
}
