package classify

import (
	"regexp"
	"strings"
)

var (
	pnrPattern   = regexp.MustCompile(`\b(\d{10})\b`)
	trainPattern = regexp.MustCompile(`\b(\d{4,5})\b`)

	cityInPattern    = regexp.MustCompile(`(?i)(?:weather|temperature)\s+(?:in|of|for|at)\s+([a-zA-Z][a-zA-Z ]+?)(?:\s+today|\s+tomorrow|\s+now|\?|$)`)
	cityFirstPattern = regexp.MustCompile(`(?i)^([a-zA-Z][a-zA-Z ]+?)\s+(?:weather|temperature)`)
	routePattern     = regexp.MustCompile(`(?i)from\s+([a-zA-Z][a-zA-Z ]+?)\s+to\s+([a-zA-Z][a-zA-Z ]+?)(?:\s+on\s+(.+?))?\s*$`)
)

// fillerWords never name a city on their own.
var fillerWords = map[string]bool{
	"the": true, "a": true, "an": true, "today": true, "tomorrow": true,
	"now": true, "current": true, "what": true, "whats": true, "how": true,
	"hows": true, "is": true, "please": true, "tell": true, "me": true,
	"show": true, "get": true, "check": true, "here": true, "near": true,
	"nearby": true, "my": true, "location": true,
}

// Devanagari city names the weather table recognizes without needing
// transliteration.
var devanagariCities = map[string]string{
	"दिल्ली":   "Delhi",
	"मुंबई":    "Mumbai",
	"कोलकाता":  "Kolkata",
	"चेन्नई":   "Chennai",
	"बेंगलुरु": "Bengaluru",
	"जयपुर":    "Jaipur",
	"लखनऊ":     "Lucknow",
	"पटना":     "Patna",
	"पुणे":     "Pune",
	"हैदराबाद": "Hyderabad",
}

// ExtractPNR returns the 10-digit PNR token in text, or "".
func ExtractPNR(text string) string {
	m := pnrPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractTrainNumber returns a 4-5 digit train number token, skipping
// anything that already reads as a 10-digit PNR, or "".
func ExtractTrainNumber(text string) string {
	if ExtractPNR(text) != "" {
		return ""
	}
	m := trainPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractCity pulls a city name out of a weather-style query. Returns ""
// when the query names no city, which downstream reads as "ask the user
// to share a location".
func ExtractCity(text string) string {
	for hindi, english := range devanagariCities {
		if strings.Contains(text, hindi) {
			return english
		}
	}

	if m := cityInPattern.FindStringSubmatch(text); m != nil {
		if city := cleanCity(m[1]); city != "" {
			return city
		}
	}
	if m := cityFirstPattern.FindStringSubmatch(text); m != nil {
		if city := cleanCity(m[1]); city != "" {
			return city
		}
	}
	return ""
}

func cleanCity(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	words := strings.Fields(raw)
	kept := words[:0]
	for _, w := range words {
		if !fillerWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return titleCase(strings.Join(kept, " "))
}

// ExtractRoute pulls source/destination (and an optional date phrase)
// out of a "from X to Y [on date]" journey query.
func ExtractRoute(text string) (source, destination, date string) {
	m := routePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", ""
	}
	return titleCase(strings.TrimSpace(m[1])), titleCase(strings.TrimSpace(m[2])), strings.TrimSpace(m[3])
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
