package classify

import (
	"testing"

	"github.com/d23ai/sahay-gateway/internal/store"
	"github.com/stretchr/testify/assert"
)

func weatherContext() *store.ContextEntry {
	return &store.ContextEntry{
		ConversationKey: "k",
		LastIntent:      IntentWeather,
		LastEntities:    map[string]any{"city": "Delhi"},
		LastQuery:       "weather in Delhi",
	}
}

func upgrader(threshold float64) *Classifier {
	return New(nil, "test-model", 0, threshold)
}

func TestMaybeUpgrade_ShortFollowup(t *testing.T) {
	r := upgrader(0).MaybeUpgrade(weatherContext(), "and tomorrow?", Result{
		Intent:     IntentChat,
		Confidence: 0.5,
		Entities:   map[string]any{},
	})

	assert.Equal(t, IntentWeather, r.Intent)
	assert.Equal(t, 0.7, r.Confidence)
	assert.Equal(t, "Delhi", r.Entities["city"])
}

func TestMaybeUpgrade_ConfidentResultUntouched(t *testing.T) {
	in := Result{Intent: IntentNews, Confidence: 0.9}
	r := upgrader(0).MaybeUpgrade(weatherContext(), "latest news", in)
	assert.Equal(t, in, r)
}

func TestMaybeUpgrade_ConfiguredThreshold(t *testing.T) {
	in := Result{Intent: IntentNews, Confidence: 0.75}

	// Under the default threshold 0.75 is confident enough to stand.
	r := upgrader(0).MaybeUpgrade(weatherContext(), "and tomorrow?", in)
	assert.Equal(t, IntentNews, r.Intent)

	// A stricter deployment distrusts the same result and inherits the
	// cached intent instead.
	r = upgrader(0.9).MaybeUpgrade(weatherContext(), "and tomorrow?", in)
	assert.Equal(t, IntentWeather, r.Intent)
	assert.Equal(t, 0.75, r.Confidence, "inherited confidence keeps the higher of floor and original")
}

func TestMaybeUpgrade_GreetingNeverInherits(t *testing.T) {
	for _, msg := range []string{"hi", "hello", "how are you", "good morning"} {
		r := upgrader(0).MaybeUpgrade(weatherContext(), msg, Result{Intent: IntentChat, Confidence: 0.5})
		assert.Equal(t, IntentChat, r.Intent, "message: %q", msg)
	}
}

func TestMaybeUpgrade_NonResumableIntentNotInherited(t *testing.T) {
	cached := &store.ContextEntry{LastIntent: IntentReminder}
	r := upgrader(0).MaybeUpgrade(cached, "again", Result{Intent: IntentChat, Confidence: 0.5})
	assert.Equal(t, IntentChat, r.Intent)
}

func TestMaybeUpgrade_NoContext(t *testing.T) {
	r := upgrader(0).MaybeUpgrade(nil, "and tomorrow?", Result{Intent: IntentChat, Confidence: 0.5})
	assert.Equal(t, IntentChat, r.Intent)
}

func TestMaybeUpgrade_LongUnrelatedMessageUntouched(t *testing.T) {
	r := upgrader(0).MaybeUpgrade(weatherContext(), "please write me a long poem in the style of Kabir", Result{
		Intent:     IntentChat,
		Confidence: 0.5,
	})
	assert.Equal(t, IntentChat, r.Intent)
}

func TestLooksLikeFollowup(t *testing.T) {
	assert.True(t, LooksLikeFollowup("and tomorrow?"))
	assert.True(t, LooksLikeFollowup("what about mumbai then"))
	assert.False(t, LooksLikeFollowup("hi"))
	assert.False(t, LooksLikeFollowup("how are you"))
	assert.False(t, LooksLikeFollowup(""))
}

func TestIsMoreRequest(t *testing.T) {
	assert.True(t, IsMoreRequest("more results"))
	assert.True(t, IsMoreRequest("aur bhi"))
	assert.False(t, IsMoreRequest("what is the capital of france and why is it famous for museums and art galleries today"))
}

func TestListFollowup(t *testing.T) {
	assert.True(t, ListFollowup(IntentNews))
	assert.True(t, ListFollowup(IntentGovtJobs))
	assert.False(t, ListFollowup(IntentWeather))
	assert.False(t, ListFollowup(IntentReminder))
}
