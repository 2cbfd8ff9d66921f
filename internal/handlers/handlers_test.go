package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/classify"
	"github.com/d23ai/sahay-gateway/internal/llm"
	"github.com/d23ai/sahay-gateway/internal/store"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

type fakeWeather struct {
	byCity  string
	byCoord string
	err     error

	gotCity     string
	gotLat      float64
	gotLon      float64
	coordCalled bool
}

func (f *fakeWeather) Current(_ context.Context, city string) (string, error) {
	f.gotCity = city
	return f.byCity, f.err
}

func (f *fakeWeather) CurrentAt(_ context.Context, lat, lon float64) (string, error) {
	f.coordCalled = true
	f.gotLat, f.gotLon = lat, lon
	return f.byCoord, f.err
}

type fakeSearch struct {
	result   string
	err      error
	gotQuery string
	gotLoc   string
	nearUsed bool
}

func (f *fakeSearch) Search(_ context.Context, query, location string) (string, error) {
	f.gotQuery, f.gotLoc = query, location
	return f.result, f.err
}

func (f *fakeSearch) SearchNear(_ context.Context, query string, _, _ float64) (string, error) {
	f.nearUsed = true
	f.gotQuery = query
	return f.result, f.err
}

func newPending(t *testing.T) *store.MemoryPendingStore {
	t.Helper()
	return store.NewMemoryPendingStore(10 * time.Minute)
}

func textState(text string, entities map[string]any) *turn.State {
	return &turn.State{
		ConversationKey: "conv1",
		RawText:         text,
		MessageKind:     channel.KindText,
		Entities:        entities,
	}
}

func locationState(lat, lon float64) *turn.State {
	return &turn.State{
		ConversationKey: "conv1",
		MessageKind:     channel.KindLocation,
		Location:        &channel.Location{Lat: lat, Lon: lon},
	}
}

func TestWeather_WithCity(t *testing.T) {
	svc := &fakeWeather{byCity: "28C, clear sky in Delhi"}
	h := Weather(svc, newPending(t))

	u := h(context.Background(), textState("weather in Delhi", map[string]any{"city": "Delhi"}))
	assert.Equal(t, "28C, clear sky in Delhi", u.ResponseText)
	assert.Equal(t, "Delhi", svc.gotCity)
	assert.False(t, u.ShouldFallback)
}

func TestWeather_NoCityAsksForLocation(t *testing.T) {
	pending := newPending(t)
	h := Weather(&fakeWeather{}, pending)

	u := h(context.Background(), textState("mausam kaisa hai", nil))
	assert.Equal(t, channel.ResponseLocationRequest, u.ResponseKind)

	pa, err := pending.Peek(context.Background(), "conv1")
	require.NoError(t, err)
	require.NotNil(t, pa)
	assert.Equal(t, PendingWeather, pa.ActionKind)
	assert.Equal(t, "mausam kaisa hai", pa.OriginalMessage)
}

func TestWeather_LocationArrivalConsumesPending(t *testing.T) {
	pending := newPending(t)
	require.NoError(t, pending.Save(context.Background(), "conv1", PendingWeather, "weather"))

	svc := &fakeWeather{byCoord: "31C at your location"}
	h := Weather(svc, pending)

	u := h(context.Background(), locationState(28.61, 77.21))
	assert.Equal(t, "31C at your location", u.ResponseText)
	assert.True(t, svc.coordCalled)
	assert.Equal(t, 28.61, svc.gotLat)

	pa, err := pending.Peek(context.Background(), "conv1")
	require.NoError(t, err)
	assert.Nil(t, pa, "pending action should be consumed")
}

func TestWeather_ServiceErrorFallsBack(t *testing.T) {
	h := Weather(&fakeWeather{err: errors.New("api down")}, newPending(t))

	u := h(context.Background(), textState("weather", map[string]any{"city": "Delhi"}))
	assert.True(t, u.ShouldFallback)
	assert.Contains(t, u.Err, "api down")
}

func TestSearch_LocationArrivalUsesSavedQuery(t *testing.T) {
	pending := newPending(t)
	require.NoError(t, pending.Save(context.Background(), "conv1", PendingFood, "order biryani"))

	svc := &fakeSearch{result: "1. Biryani House (4.5)"}
	h := Search(svc, pending, PendingFood, "food delivery")

	u := h(context.Background(), locationState(19.07, 72.87))
	assert.True(t, svc.nearUsed)
	assert.Equal(t, "order biryani", svc.gotQuery)
	assert.Equal(t, "1. Biryani House (4.5)", u.ResponseText)
}

func TestSearch_NoLocationAsksAndParks(t *testing.T) {
	pending := newPending(t)
	h := Search(&fakeSearch{}, pending, PendingSearch, "places")

	u := h(context.Background(), textState("chemist near me", map[string]any{"search_query": "chemist"}))
	assert.Equal(t, channel.ResponseLocationRequest, u.ResponseKind)

	pa, err := pending.Peek(context.Background(), "conv1")
	require.NoError(t, err)
	require.NotNil(t, pa)
	assert.Equal(t, "chemist", pa.OriginalMessage)
}

func TestSearch_EventsKindParksPending(t *testing.T) {
	pending := newPending(t)
	h := Search(&fakeSearch{}, pending, PendingEvents, "events nearby")

	u := h(context.Background(), textState("concerts this weekend", nil))
	assert.Equal(t, channel.ResponseLocationRequest, u.ResponseKind)

	pa, err := pending.Peek(context.Background(), "conv1")
	require.NoError(t, err)
	require.NotNil(t, pa)
	assert.Equal(t, PendingEvents, pa.ActionKind)
	assert.Equal(t, "concerts this weekend", pa.OriginalMessage)
}

func TestSearch_WithExplicitLocation(t *testing.T) {
	svc := &fakeSearch{result: "1. Cafe Madras (4.6)"}
	h := Search(svc, newPending(t), PendingSearch, "places")

	u := h(context.Background(), textState("dosa in Matunga", map[string]any{
		"search_query": "dosa", "location": "Matunga",
	}))
	assert.False(t, svc.nearUsed)
	assert.Equal(t, "Matunga", svc.gotLoc)
	assert.Equal(t, "1. Cafe Madras (4.6)", u.ResponseText)
}

type fakeRail struct {
	out string
	err error
}

func (f *fakeRail) PNRStatus(_ context.Context, _ string) (string, error)       { return f.out, f.err }
func (f *fakeRail) TrainStatus(_ context.Context, _, _ string) (string, error)  { return f.out, f.err }
func (f *fakeRail) PlanJourney(_ context.Context, _, _, _ string) (string, error) { return f.out, f.err }

func TestPNRStatus_MissingNumberPrompts(t *testing.T) {
	u := PNRStatus(&fakeRail{})(context.Background(), textState("check my pnr", nil))
	assert.Contains(t, u.ResponseText, "10-digit")
	assert.False(t, u.ShouldFallback)
}

func TestPNRStatus_Found(t *testing.T) {
	u := PNRStatus(&fakeRail{out: "CNF, coach B2"})(context.Background(),
		textState("pnr 1234567890", map[string]any{"pnr": "1234567890"}))
	assert.Equal(t, "CNF, coach B2", u.ResponseText)
}

func TestTrainJourney_MissingRoutePrompts(t *testing.T) {
	u := TrainJourney(&fakeRail{})(context.Background(), textState("book a train", nil))
	assert.Contains(t, u.ResponseText, "from Mumbai to Pune")
}

type fakeNews struct {
	out       string
	gotOffset int
	gotQuery  string
}

func (f *fakeNews) Headlines(_ context.Context, query string, offset int) (string, error) {
	f.gotQuery, f.gotOffset = query, offset
	return f.out, nil
}

func TestNews_FirstPage(t *testing.T) {
	svc := &fakeNews{out: "1. Headline"}
	u := News(svc)(context.Background(), textState("latest news", map[string]any{"news_query": "india"}))

	assert.Equal(t, 0, svc.gotOffset)
	assert.Equal(t, "india", svc.gotQuery)
	assert.Equal(t, newsPageSize, u.Entities["result_offset"])
}

func TestNews_MoreAdvancesOffset(t *testing.T) {
	svc := &fakeNews{out: "6. Headline"}
	// A cached offset arrives as float64 after the redis JSON round trip.
	u := News(svc)(context.Background(), textState("more", map[string]any{"result_offset": float64(5)}))

	assert.Equal(t, 5, svc.gotOffset)
	assert.Equal(t, 10, u.Entities["result_offset"])
}

type fakeAstro struct {
	out     string
	err     error
	gotSign string
	gotQ    string
}

func (f *fakeAstro) Horoscope(_ context.Context, sign, _ string) (string, error) {
	f.gotSign = sign
	return f.out, f.err
}
func (f *fakeAstro) BirthChart(_ context.Context, _ map[string]any) (string, error) {
	return f.out, f.err
}
func (f *fakeAstro) Tarot(_ context.Context, q string) (string, error) {
	f.gotQ = q
	return f.out, f.err
}
func (f *fakeAstro) Ask(_ context.Context, q string) (string, error) {
	f.gotQ = q
	return f.out, f.err
}
func (f *fakeAstro) Numerology(_ context.Context, _ string) (string, error) {
	return f.out, f.err
}

func TestAstrologyGraph_RoutesByIntent(t *testing.T) {
	svc := &fakeAstro{out: "Leo: a fine day"}
	g, err := AstrologyGraph(svc)
	require.NoError(t, err)

	state := &turn.State{
		Intent:   classify.IntentHoroscope,
		Entities: map[string]any{"astro_sign": "Leo"},
	}
	require.NoError(t, g.Run(context.Background(), state))
	assert.Equal(t, "Leo: a fine day", state.ResponseText)
	assert.Equal(t, "Leo", svc.gotSign)
}

func TestAstrologyGraph_UnplacedGoesToAstrologer(t *testing.T) {
	svc := &fakeAstro{out: "The stars say yes"}
	g, err := AstrologyGraph(svc)
	require.NoError(t, err)

	state := &turn.State{Intent: "astrology", RawText: "will I get the job?"}
	require.NoError(t, g.Run(context.Background(), state))
	assert.Equal(t, "will I get the job?", svc.gotQ)
	assert.Equal(t, "The stars say yes", state.ResponseText)
}

func TestHoroscope_MissingSignPrompts(t *testing.T) {
	u := Horoscope(&fakeAstro{})(context.Background(), textState("horoscope", nil))
	assert.Contains(t, u.ResponseText, "zodiac")
}

type fakeChatLLM struct {
	content string
	err     error
	gotSys  string
}

func (f *fakeChatLLM) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	f.gotSys = req.System
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content}, nil
}

func (f *fakeChatLLM) Health(_ context.Context) error { return nil }

func TestChat_RepliesViaLLM(t *testing.T) {
	fake := &fakeChatLLM{content: "Namaste! How can I help?"}
	u := Chat(fake, "m")(context.Background(), textState("hello", nil))
	assert.Equal(t, "Namaste! How can I help?", u.ResponseText)
}

func TestChat_PassesLanguageHint(t *testing.T) {
	fake := &fakeChatLLM{content: "ok"}
	state := textState("namaste", nil)
	state.Language = "hi"
	Chat(fake, "m")(context.Background(), state)
	assert.Contains(t, fake.gotSys, "language hint: hi")
}

func TestChat_ErrorFallsBack(t *testing.T) {
	u := Chat(&fakeChatLLM{err: errors.New("down")}, "m")(context.Background(), textState("hi", nil))
	assert.True(t, u.ShouldFallback)
}

func TestChat_NilClientFallsBack(t *testing.T) {
	u := Chat(nil, "m")(context.Background(), textState("hi", nil))
	assert.True(t, u.ShouldFallback)
}

type fakeInfo struct {
	out         string
	gotIntent   string
	gotEntities map[string]any
}

func (f *fakeInfo) Lookup(_ context.Context, intent string, entities map[string]any) (string, error) {
	f.gotIntent = intent
	f.gotEntities = entities
	return f.out, nil
}

func TestInfo_PassesIntentAndRawText(t *testing.T) {
	svc := &fakeInfo{out: "Reliance: 2950.10 INR"}
	h := Info(svc, classify.IntentStockPrice, channel.ResponseText)

	u := h(context.Background(), textState("reliance price", map[string]any{"stock_name": "Reliance"}))
	assert.Equal(t, classify.IntentStockPrice, svc.gotIntent)
	assert.Equal(t, "Reliance", svc.gotEntities["stock_name"])
	assert.Equal(t, "reliance price", svc.gotEntities["raw_text"])
	assert.Equal(t, "Reliance: 2950.10 INR", u.ResponseText)
}

func TestFallback_FixedApology(t *testing.T) {
	u := Fallback()(context.Background(), &turn.State{Err: "upstream down"})
	assert.Contains(t, u.ResponseText, "help")
	assert.False(t, u.ShouldFallback)
}
