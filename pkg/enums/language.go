package enums

import "fmt"

// Language is a site language code. Italian is the authoring language;
// the remaining codes are the published storefront translations.
type Language string

const (
	LanguageItalian    Language = "it"
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguageFrench     Language = "fr"
	LanguagePortuguese Language = "pt"
	LanguageChinese    Language = "cn"
	LanguageSerbian    Language = "rs"
)

var validLanguages = []Language{
	LanguageItalian,
	LanguageEnglish,
	LanguageSpanish,
	LanguageFrench,
	LanguagePortuguese,
	LanguageChinese,
	LanguageSerbian,
}

func Languages() []Language {
	out := make([]Language, len(validLanguages))
	copy(out, validLanguages)
	return out
}

// TargetLanguages lists every language a quote is localized into,
// which is every supported language except Italian.
func TargetLanguages() []Language {
	out := make([]Language, 0, len(validLanguages)-1)
	for _, l := range validLanguages {
		if l != LanguageItalian {
			out = append(out, l)
		}
	}
	return out
}

func (l Language) IsValid() bool {
	for _, v := range validLanguages {
		if l == v {
			return true
		}
	}
	return false
}

func (l Language) String() string {
	return string(l)
}

func ParseLanguage(raw string) (Language, error) {
	l := Language(raw)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid language: %q", raw)
	}
	return l, nil
}
