package products

// dedupeLinks removes duplicate image links while preserving first-seen order.
// It is idempotent: running it on an already-unique slice returns an equal slice.
func dedupeLinks(links []string) []string {
	if len(links) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}
