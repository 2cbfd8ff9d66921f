package classify

import (
	"strings"

	"github.com/d23ai/sahay-gateway/internal/store"
)

// defaultUpgradeThreshold: a fresh classification at or above this
// confidence is trusted as-is and never overridden by cached context.
// Configurable per deployment via dispatch.confidence_threshold.
const defaultUpgradeThreshold = 0.6

// upgradedConfidence is the floor applied to an inherited intent.
const upgradedConfidence = 0.7

var continuationCues = []string{
	"also", "what about", "how about", "tomorrow", "today", "now",
	"this", "same", "again", "update", "next", "more", "and",
	"aur", "aur batao", "kal", "phir se",
}

var greetingsOnly = map[string]bool{
	"hi": true, "hello": true, "hey": true, "namaste": true, "hola": true,
	"yo": true, "sup": true,
}

var smalltalkPhrases = []string{
	"how are you", "how r u", "what's up", "whats up",
	"what are you doing", "good morning", "good afternoon",
	"good evening", "good night", "hey there",
	"kaise ho", "kaisi ho", "kya kar rahe", "aur batao kya chal raha",
}

var moreCues = []string{
	"more", "more results", "some more", "next", "another", "one more",
	"again", "details", "how to apply", "link", "links", "website",
	"aur", "aur bhi", "kuch aur", "phir se",
}

// IsSmalltalk reports whether the message is a bare greeting or a
// small-talk phrase. These never inherit a stale intent.
func IsSmalltalk(text string) bool {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" || greetingsOnly[msg] {
		return true
	}
	for _, phrase := range smalltalkPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// LooksLikeFollowup reports whether the message is short enough, or
// carries a continuation cue, to plausibly refer back to the previous
// turn.
func LooksLikeFollowup(text string) bool {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" || IsSmalltalk(msg) {
		return false
	}
	if len(strings.Fields(msg)) <= 4 {
		return true
	}
	for _, cue := range continuationCues {
		if strings.Contains(msg, cue) {
			return true
		}
	}
	return false
}

// IsMoreRequest reports whether the message asks for more of the last
// list-style answer ("more", "next", "aur bhi").
func IsMoreRequest(text string) bool {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" || len(msg) > 80 {
		return false
	}
	for _, cue := range moreCues {
		if strings.Contains(msg, cue) {
			return true
		}
	}
	return false
}

// ListFollowup reports whether intent produces list answers that a
// "more" follow-up can re-run.
func ListFollowup(intent string) bool {
	return listFollowupIntents[intent]
}

// MaybeUpgrade applies the conservative follow-up policy: a result below
// the configured confidence threshold (or a generic chat result) on a
// follow-up-looking message inherits the cached intent and entities,
// provided the cached intent is resumable. Everything else passes
// through unchanged.
//
// False negatives degrade to "ask again"; false positives are bounded by
// the resumable allow-list and the small-talk exclusion.
func (c *Classifier) MaybeUpgrade(cached *store.ContextEntry, text string, r Result) Result {
	if r.Intent != IntentChat && r.Confidence >= c.threshold {
		return r
	}
	if !LooksLikeFollowup(text) {
		return r
	}
	if cached == nil || !Resumable(cached.LastIntent) {
		return r
	}

	upgraded := r
	upgraded.Intent = cached.LastIntent
	if upgraded.Confidence < upgradedConfidence {
		upgraded.Confidence = upgradedConfidence
	}
	if len(cached.LastEntities) > 0 {
		upgraded.Entities = make(map[string]any, len(cached.LastEntities))
		for k, v := range cached.LastEntities {
			upgraded.Entities[k] = v
		}
	}
	return upgraded
}
