package classify

// Intent names. The set is closed: anything a classifier layer produces
// outside this enum is coerced to IntentChat.
const (
	IntentHelp         = "help"
	IntentChat         = "chat"
	IntentWeather      = "weather"
	IntentNews         = "get_news"
	IntentStockPrice   = "stock_price"
	IntentCricketScore = "cricket_score"
	IntentLocalSearch  = "local_search"
	IntentFoodOrder    = "food_order"
	IntentEvents       = "events"
	IntentImage        = "image"
	IntentReminder     = "set_reminder"
	IntentEChallan     = "echallan"
	IntentGovtJobs     = "govt_jobs"
	IntentGovtSchemes  = "govt_schemes"

	IntentPNRStatus    = "pnr_status"
	IntentTrainStatus  = "train_status"
	IntentTrainJourney = "train_journey"
	IntentMetroTicket  = "metro_ticket"

	IntentHoroscope     = "get_horoscope"
	IntentBirthChart    = "birth_chart"
	IntentTarotReading  = "tarot_reading"
	IntentAskAstrologer = "ask_astrologer"
	IntentNumerology    = "numerology"
)

// knownIntents is the closed enum the LLM fallback is constrained to.
var knownIntents = map[string]bool{
	IntentHelp:          true,
	IntentChat:          true,
	IntentWeather:       true,
	IntentNews:          true,
	IntentStockPrice:    true,
	IntentCricketScore:  true,
	IntentLocalSearch:   true,
	IntentFoodOrder:     true,
	IntentEvents:        true,
	IntentImage:         true,
	IntentReminder:      true,
	IntentEChallan:      true,
	IntentGovtJobs:      true,
	IntentGovtSchemes:   true,
	IntentPNRStatus:     true,
	IntentTrainStatus:   true,
	IntentTrainJourney:  true,
	IntentMetroTicket:   true,
	IntentHoroscope:     true,
	IntentBirthChart:    true,
	IntentTarotReading:  true,
	IntentAskAstrologer: true,
	IntentNumerology:    true,
}

// KnownIntent reports whether name is part of the closed intent enum.
func KnownIntent(name string) bool {
	return knownIntents[name]
}

// resumableIntents are safe to repeat verbatim on a short follow-up.
// One-shot transactional intents (reminders, tickets) are deliberately
// excluded: inheriting them from stale context would re-run an action
// the user never asked for twice.
var resumableIntents = map[string]bool{
	IntentWeather:      true,
	IntentNews:         true,
	IntentStockPrice:   true,
	IntentCricketScore: true,
	IntentLocalSearch:  true,
	IntentGovtJobs:     true,
	IntentGovtSchemes:  true,
	IntentEvents:       true,
}

// Resumable reports whether intent may be inherited by a follow-up turn.
func Resumable(intent string) bool {
	return resumableIntents[intent]
}

// listFollowupIntents produce paginated/list answers where "more" or
// "next" means re-running the last query.
var listFollowupIntents = map[string]bool{
	IntentNews:        true,
	IntentGovtJobs:    true,
	IntentGovtSchemes: true,
	IntentLocalSearch: true,
	IntentCricketScore: true,
}
