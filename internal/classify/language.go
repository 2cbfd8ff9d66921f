package classify

import "unicode"

var scriptLanguages = []struct {
	script *unicode.RangeTable
	code   string
}{
	{unicode.Devanagari, "hi"},
	{unicode.Bengali, "bn"},
	{unicode.Tamil, "ta"},
	{unicode.Telugu, "te"},
	{unicode.Kannada, "kn"},
	{unicode.Malayalam, "ml"},
	{unicode.Gujarati, "gu"},
	{unicode.Gurmukhi, "pa"},
	{unicode.Oriya, "or"},
}

// DetectLanguage guesses an ISO-ish language code from the dominant
// script of the text. Latin-script text (including romanized Hindi)
// reads as "en"; that is fine because the keyword tables carry romanized
// variants too.
func DetectLanguage(text string) string {
	counts := make(map[string]int)
	total := 0
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsDigit(r) || unicode.IsPunct(r) {
			continue
		}
		total++
		for _, sl := range scriptLanguages {
			if unicode.Is(sl.script, r) {
				counts[sl.code]++
				break
			}
		}
	}
	if total == 0 {
		return "en"
	}

	best, bestCount := "en", 0
	for code, count := range counts {
		if count > bestCount {
			best, bestCount = code, count
		}
	}
	// Require a real share of non-Latin characters before switching
	// away from the default.
	if bestCount*3 < total {
		return "en"
	}
	return best
}
