package classify

import "strings"

// keywordRule matches an intent by localized substrings. Rules are
// evaluated in table order; the first hit wins, so overlapping
// vocabularies (e.g. "restaurant weather report") resolve by priority,
// not by accident.
type keywordRule struct {
	intent     string
	confidence float64
	keywords   []string
	// guard, when set, must also pass for the rule to fire.
	guard func(text, lower string) bool
	// entities, when set, extracts intent-specific entities. An empty
	// map is fine; handlers ask the user for whatever is missing.
	entities func(text, lower string) map[string]any
}

// keywordTable is the fixed-priority keyword layer. Each entry carries
// the same intent's vocabulary across several scripts so no
// transliteration is needed.
var keywordTable = []keywordRule{
	{
		intent:     IntentHelp,
		confidence: 0.95,
		keywords: []string{
			"what can you do", "what do you do", "what are your features",
			"what services", "how can you help", "help",
			"मदद", "सहायता", "क्या कर सकते हो", "हेल्प",
			"সাহায্য", "உதவி", "సహాయం", "ಸಹಾಯ", "સહાય", "ਮਦਦ",
		},
	},
	{
		intent:     IntentWeather,
		confidence: 0.95,
		keywords: []string{
			"weather", "temperature", "forecast", "mausam",
			"मौसम", "तापमान", "আবহাওয়া", "வானிலை", "వాతావరణం",
			"ಹವಾಮಾನ", "കാലാവസ്ഥ", "હવામાન", "ਮੌਸਮ", "ପାଣିପାଗ",
		},
		entities: func(text, _ string) map[string]any {
			if city := ExtractCity(text); city != "" {
				return map[string]any{"city": city}
			}
			return map[string]any{}
		},
	},
	{
		intent:     IntentEChallan,
		confidence: 0.9,
		keywords: []string{
			"challan", "e-challan", "echallan", "traffic fine", "vehicle fine",
			"चालान", "ट्रैफिक चालान",
		},
	},
	{
		intent:     IntentTrainJourney,
		confidence: 0.9,
		keywords: []string{
			"train journey", "plan train", "train from", "trains from",
			"book train", "railway from",
			"ट्रेन यात्रा", "यात्रा योजना",
		},
		guard: func(_, lower string) bool {
			return strings.Contains(lower, " from ") && strings.Contains(lower, " to ")
		},
		entities: func(text, _ string) map[string]any {
			source, destination, date := ExtractRoute(text)
			entities := map[string]any{}
			if source != "" {
				entities["source_city"] = source
				entities["destination_city"] = destination
			}
			if date != "" {
				entities["journey_date"] = date
			}
			return entities
		},
	},
	{
		intent:     IntentMetroTicket,
		confidence: 0.9,
		keywords: []string{
			"metro", "dmrc", "metro fare", "metro ticket",
			"मेट्रो", "মেট্রো", "மெட்ரோ",
		},
	},
	{
		intent:     IntentNews,
		confidence: 0.9,
		keywords: []string{
			"news", "headlines", "breaking",
			"समाचार", "खबर", "খবর", "செய்தி", "వార్తలు", "ಸುದ್ದಿ",
		},
		entities: func(text, lower string) map[string]any {
			return map[string]any{"news_query": strings.TrimSpace(text)}
		},
	},
	{
		intent:     IntentStockPrice,
		confidence: 0.9,
		keywords: []string{
			"stock price", "share price", "stock", "portfolio",
			"शेयर", "शेयर भाव",
		},
	},
	{
		intent:     IntentCricketScore,
		confidence: 0.9,
		keywords: []string{
			"cricket score", "live score", "scorecard", "ipl score",
			"क्रिकेट स्कोर", "स्कोर",
		},
	},
	{
		intent:     IntentImage,
		confidence: 0.9,
		keywords: []string{
			"generate image", "create image", "make image", "draw",
			"चित्र बनाओ", "तस्वीर बनाओ", "ছবি বানাও", "படம் வரை",
		},
		entities: func(text, _ string) map[string]any {
			return map[string]any{"image_prompt": text}
		},
	},
	{
		intent:     IntentReminder,
		confidence: 0.9,
		keywords: []string{
			"remind me", "reminder", "set an alarm", "set alarm",
			"याद दिलाना", "रिमाइंडर",
		},
	},
	{
		intent:     IntentGovtJobs,
		confidence: 0.9,
		keywords: []string{
			"govt jobs", "government jobs", "sarkari naukri",
			"सरकारी नौकरी", "সরকারি চাকরি",
		},
	},
	{
		intent:     IntentGovtSchemes,
		confidence: 0.9,
		keywords: []string{
			"govt schemes", "government schemes", "sarkari yojana",
			"सरकारी योजना", "योजना",
		},
	},
	{
		intent:     IntentFoodOrder,
		confidence: 0.9,
		keywords: []string{
			"order food", "food near me", "restaurants near me", "hungry",
			"खाना", "रेस्तरां",
		},
	},
	{
		intent:     IntentLocalSearch,
		confidence: 0.9,
		keywords: []string{
			"near me", "nearby", "search for", "find a", "find an",
			"hospital", "restaurant", "pharmacy", "atm", "petrol pump",
			"अस्पताल", "दवाखाना", "आसपास",
		},
		entities: func(text, _ string) map[string]any {
			return map[string]any{"search_query": strings.TrimSpace(text)}
		},
	},
	{
		intent:     IntentHoroscope,
		confidence: 0.9,
		keywords: []string{
			"horoscope", "rashifal", "राशिफल", "রাশিফল",
			"aries", "taurus", "gemini", "cancer ", "leo ", "virgo",
			"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
		},
	},
	{
		intent:     IntentBirthChart,
		confidence: 0.9,
		keywords: []string{
			"birth chart", "kundli", "janam patri", "कुंडली", "जन्म पत्री",
		},
	},
	{
		intent:     IntentTarotReading,
		confidence: 0.9,
		keywords: []string{
			"tarot", "tarot reading", "pick a card", "टैरो",
		},
	},
	{
		intent:     IntentNumerology,
		confidence: 0.9,
		keywords: []string{
			"numerology", "lucky number", "life path number", "अंक ज्योतिष",
		},
	},
}

// matchKeywords runs the keyword layer and returns the first matching
// rule's result, or nil when no table matches.
func matchKeywords(text string) *Result {
	lower := strings.ToLower(text)
	for i := range keywordTable {
		rule := &keywordTable[i]
		if !rule.matches(text, lower) {
			continue
		}
		if rule.guard != nil && !rule.guard(text, lower) {
			continue
		}
		entities := map[string]any{}
		if rule.entities != nil {
			entities = rule.entities(text, lower)
		}
		return &Result{
			Intent:     rule.intent,
			Confidence: rule.confidence,
			Entities:   entities,
		}
	}
	return nil
}

func (r *keywordRule) matches(text, lower string) bool {
	for _, kw := range r.keywords {
		// Non-Latin keywords are matched against the raw text; casing
		// only matters for Latin script.
		if strings.Contains(lower, kw) || strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
