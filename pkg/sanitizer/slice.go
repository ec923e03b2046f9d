package sanitizer

const MaxSpecialties = 10

func NormalizeStringSlice(items []string, normalizer Strategy) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		if seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

// NormalizeSpecialties keeps the first MaxSpecialties distinct tags.
func NormalizeSpecialties(tags []string) []string {
	out := NormalizeStringSlice(tags, NormalizeSpecialty)
	if len(out) > MaxSpecialties {
		out = out[:MaxSpecialties]
	}
	return out
}
