package locale

import (
	"fmt"
	"os"
	"strings"

	"github.com/dikkadev/tachiext/pkg/github"
	"golang.org/x/text/language"
)

// Extension languages that are not BCP 47 tags and match every preference
const (
	LangAll   = "all"
	LangOther = "other"
)

// Preferred returns the preferred languages: the configured ones if any,
// otherwise the LC_ALL / LANG environment, otherwise English.
func Preferred(configured []string) []language.Tag {
	var tags []language.Tag
	for _, lang := range configured {
		if tag, err := Parse(lang); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 0 {
		return tags
	}

	for _, env := range []string{"LC_ALL", "LANG"} {
		if tag, err := fromEnv(os.Getenv(env)); err == nil {
			return []language.Tag{tag}
		}
	}

	return []language.Tag{language.English}
}

// Parse parses an extension language code such as "en", "pt-BR" or "zh-Hans"
func Parse(lang string) (language.Tag, error) {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" || lang == LangAll || lang == LangOther {
		return language.Und, fmt.Errorf("not a language tag: %q", lang)
	}
	return language.Parse(lang)
}

// fromEnv parses POSIX locale values like "en_US.UTF-8"
func fromEnv(value string) (language.Tag, error) {
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	if value == "" || value == "C" || value == "POSIX" {
		return language.Und, fmt.Errorf("no locale in %q", value)
	}
	return Parse(value)
}

// Matches reports whether an extension language fits any preferred language.
// Languages match on their base ("pt-BR" matches "pt").
func Matches(extLang string, preferred []language.Tag) bool {
	if extLang == LangAll || extLang == LangOther {
		return true
	}

	tag, err := Parse(extLang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()

	for _, p := range preferred {
		if pb, _ := p.Base(); pb == base {
			return true
		}
	}
	return false
}

// FilterExtensions keeps the extensions whose language matches the preferences
func FilterExtensions(exts []github.Extension, preferred []language.Tag) []github.Extension {
	var filtered []github.Extension
	for _, ext := range exts {
		if Matches(ext.Lang, preferred) {
			filtered = append(filtered, ext)
		}
	}
	return filtered
}

// Best selects the extension whose language fits the preferences best.
// Multi-language ("all") builds are the fallback when no language matches.
func Best(exts []github.Extension, preferred []language.Tag) (*github.Extension, error) {
	var (
		supported []language.Tag
		indexes   []int
		fallback  = -1
	)

	for i, ext := range exts {
		tag, err := Parse(ext.Lang)
		if err != nil {
			if ext.Lang == LangAll && fallback < 0 {
				fallback = i
			}
			continue
		}
		supported = append(supported, tag)
		indexes = append(indexes, i)
	}

	if len(supported) > 0 {
		matcher := language.NewMatcher(supported)
		_, idx, confidence := matcher.Match(preferred...)
		if confidence != language.No {
			return &exts[indexes[idx]], nil
		}
	}

	if fallback >= 0 {
		return &exts[fallback], nil
	}

	return nil, fmt.Errorf("no extension matches languages %v", preferred)
}
