// Package locale holds the user-visible strings that end up inside rendered
// posts: the trailer line and the teaser placeholder.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	keyTrailer     = "Generated by longpost"
	keyPlaceholder = "Long post"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		keyTrailer:     "Generated by longpost",
		keyPlaceholder: "Long post",
	},
	language.German: {
		keyTrailer:     "Erstellt mit longpost",
		keyPlaceholder: "Langer Beitrag",
	},
	language.SimplifiedChinese: {
		keyTrailer:     "由 longpost 生成",
		keyPlaceholder: "长微博",
	},
}

// supported is in preference order; the first entry is the default.
var supported = []language.Tag{
	language.English,
	language.German,
	language.SimplifiedChinese,
}

var (
	cat     = newCatalog()
	matcher = language.NewMatcher(supported)
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, tag := range supported {
		for key, msg := range translations[tag] {
			if err := b.SetString(tag, key, msg); err != nil {
				panic("locale: " + err.Error())
			}
		}
	}
	return b
}

// Supported lists the languages with translations.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match returns the supported language closest to the BCP 47 tag s.
// Unknown or malformed input yields English.
func Match(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return match(tag)
}

func match(tag language.Tag) language.Tag {
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

func printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(match(tag), message.Catalog(cat))
}

// Trailer returns the line appended to every rendered post.
func Trailer(tag language.Tag) string {
	return printer(tag).Sprintf(keyTrailer)
}

// Placeholder returns the teaser used for posts whose first line is empty.
func Placeholder(tag language.Tag) string {
	return printer(tag).Sprintf(keyPlaceholder)
}
