package shared

import "golang.org/x/text/language"

// Enum values never carry their own label. Each enum family registers a
// LabelTable and the boundary resolves labels for the caller's language.

var (
	supportedLanguages = []language.Tag{language.French, language.English}
	languageMatcher    = language.NewMatcher(supportedLanguages)
)

// LabelTable maps an enum value to its label per language.
type LabelTable map[language.Tag]map[string]string

// Label returns the label of value for the closest supported language,
// falling back to French and then to the raw value.
func (t LabelTable) Label(value string, tag language.Tag) string {
	_, idx, _ := languageMatcher.Match(tag)
	if labels, ok := t[supportedLanguages[idx]]; ok {
		if label, ok := labels[value]; ok {
			return label
		}
	}
	if label, ok := t[language.French][value]; ok {
		return label
	}
	return value
}

// ParseLanguage resolves a BCP 47 string, defaulting to French.
func ParseLanguage(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.French
	}
	return tag
}
