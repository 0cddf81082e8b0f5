package manga

import "sort"

// DefaultLanguages is the preferred-language chain used when none is configured.
var DefaultLanguages = []string{"en", "ja-ro", "ja"}

// Pick returns the text for the first preferred language present, falling
// back to the lexicographically first language so output is stable.
func (localized LocalizedString) Pick(languages []string) string {
	if len(localized) == 0 {
		return ""
	}

	for _, language := range languages {
		if value := localized[language]; value != "" {
			return value
		}
	}

	keys := make([]string, 0, len(localized))
	for key, value := range localized {
		if value != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return localized[keys[0]]
}

// PickTitle walks title, then altTitles, in preferred-language order before
// settling for any title at all.
func PickTitle(attributes MangaAttributes, languages []string) string {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	for _, language := range languages {
		if value := attributes.Title[language]; value != "" {
			return value
		}
	}
	for _, language := range languages {
		for _, alt := range attributes.AltTitles {
			if value := alt[language]; value != "" {
				return value
			}
		}
	}

	if value := attributes.Title.Pick(nil); value != "" {
		return value
	}
	for _, alt := range attributes.AltTitles {
		if value := alt.Pick(nil); value != "" {
			return value
		}
	}
	return ""
}

// CoverFileName scans relationships for the first expanded cover_art entry.
func CoverFileName(relationships []Entity) string {
	for _, relation := range relationships {
		if relation.Type != TypeCoverArt {
			continue
		}
		if attributes, ok := relation.CoverArt(); ok && attributes.FileName != "" {
			return attributes.FileName
		}
	}

	return ""
}

// TagNames returns the localized names of the manga's tags.
func TagNames(attributes MangaAttributes, languages []string) []string {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	names := make([]string, 0, len(attributes.Tags))
	for _, tag := range attributes.Tags {
		tagAttributes, ok := tag.Tag()
		if !ok {
			continue
		}
		if name := tagAttributes.Name.Pick(languages); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// CreatorNames returns author then artist names from expanded relationships,
// skipping duplicates (the same person is often both).
func CreatorNames(relationships []Entity) []string {
	seen := map[string]bool{}
	var names []string
	for _, wanted := range []EntityType{TypeAuthor, TypeArtist} {
		for _, relation := range relationships {
			if relation.Type != wanted {
				continue
			}
			attributes, ok := relation.Author()
			if !ok || attributes.Name == "" || seen[attributes.Name] {
				continue
			}
			seen[attributes.Name] = true
			names = append(names, attributes.Name)
		}
	}
	return names
}
