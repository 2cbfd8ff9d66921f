// Package agent runs the turn loop: one inbound channel event in, one
// response out.
package agent

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/classify"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/logging"
	"github.com/d23ai/sahay-gateway/internal/metrics"
	"github.com/d23ai/sahay-gateway/internal/registry"
	"github.com/d23ai/sahay-gateway/internal/store"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// lockShards bounds the per-conversation serialization map. Two
// conversations sharing a shard serialize against each other, which is
// harmless; two events for the same conversation never interleave.
const lockShards = 64

const emptyResponseText = "Sorry, I have nothing useful to say to that. Try \"help\" to see what I can do."

// Orchestrator sequences one turn: pre-route, classify, walk the graph,
// write back context, and shape the outbound response. It is safe for
// concurrent use; turns for the same conversation run one at a time.
type Orchestrator struct {
	classifier *classify.Classifier
	graph      *graph.Graph
	registry   *registry.Registry
	contexts   store.ContextStore
	pending    store.PendingStore
	logger     *slog.Logger

	locks [lockShards]sync.Mutex
}

// New creates an orchestrator over a built routing graph.
func New(c *classify.Classifier, g *graph.Graph, reg *registry.Registry, contexts store.ContextStore, pending store.PendingStore) *Orchestrator {
	return &Orchestrator{
		classifier: c,
		graph:      g,
		registry:   reg,
		contexts:   contexts,
		pending:    pending,
		logger:     logging.WithComponent("agent"),
	}
}

// HandleMessage processes one inbound event and always returns a
// response: a turn never ends silently and never surfaces an internal
// error to the user.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg *channel.Message) *channel.Response {
	lock := o.conversationLock(msg.ConversationKey)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	state := &turn.State{
		TurnID:          uuid.NewString(),
		ConversationKey: msg.ConversationKey,
		Channel:         msg.Channel,
		RawText:         msg.Text,
		MessageKind:     msg.Kind,
		Location:        msg.Location,
		MediaRef:        msg.MediaRef,
	}

	o.resolveIntent(ctx, msg, state)

	if err := o.graph.Run(ctx, state); err != nil {
		// Only a miswired graph reaches here; treat it like any other
		// failed turn.
		o.logger.Error("graph walk failed", "turn_id", state.TurnID, "error", err)
		state.ShouldFallback = true
		state.ResponseText = emptyResponseText
		state.ResponseKind = channel.ResponseText
	}
	if state.ResponseText == "" {
		state.ResponseText = emptyResponseText
		state.ResponseKind = channel.ResponseText
	}
	if state.ResponseKind == "" {
		state.ResponseKind = channel.ResponseText
	}

	o.writeBackContext(ctx, msg, state)

	outcome := "ok"
	if state.ShouldFallback {
		outcome = "fallback"
	}
	metrics.TurnsTotal.WithLabelValues(msg.Channel, state.Intent, outcome).Inc()
	metrics.TurnDuration.WithLabelValues(msg.Channel).Observe(time.Since(start).Seconds())

	o.logger.Info("turn complete",
		"turn_id", state.TurnID,
		"channel", msg.Channel,
		"intent", state.Intent,
		"confidence", state.IntentConfidence,
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &channel.Response{
		Content:  state.ResponseText,
		Kind:     state.ResponseKind,
		Language: state.Language,
	}
}

// resolveIntent fills the state's intent, confidence, entities and
// language. Location messages are pre-routed against the pending store
// before any text classification; everything else goes through the
// layered classifier and the follow-up policy.
func (o *Orchestrator) resolveIntent(ctx context.Context, msg *channel.Message, state *turn.State) {
	if msg.Kind == channel.KindLocation && msg.Location != nil {
		state.Intent = o.pendingIntent(ctx, msg.ConversationKey)
		state.IntentConfidence = 1.0
		// A location share carries no text to detect a language from.
		state.Language = "en"
		return
	}

	cached := o.cachedContext(ctx, msg.ConversationKey)

	// "More" follow-ups re-run the cached list query verbatim, skipping
	// classification entirely.
	if cached != nil && classify.ListFollowup(cached.LastIntent) && classify.IsMoreRequest(msg.Text) {
		metrics.ContextCacheOps.WithLabelValues("upgrade").Inc()
		state.Intent = cached.LastIntent
		state.IntentConfidence = 1.0
		state.Entities = cloneEntities(cached.LastEntities)
		return
	}

	result := o.classifier.Classify(ctx, msg.Text, "")
	upgraded := o.classifier.MaybeUpgrade(cached, msg.Text, result)
	if upgraded.Intent != result.Intent {
		metrics.ContextCacheOps.WithLabelValues("upgrade").Inc()
	}

	state.Intent = upgraded.Intent
	state.IntentConfidence = upgraded.Confidence
	state.Entities = upgraded.Entities
	state.Language = upgraded.Language
}

// pendingIntent maps a location share to the intent of the flow waiting
// for it. The peek is fail-open: a store error reads as "nothing
// pending" and the location becomes a nearby search.
func (o *Orchestrator) pendingIntent(ctx context.Context, key string) string {
	pa, err := o.pending.Peek(ctx, key)
	if err != nil {
		metrics.PendingActions.WithLabelValues("error").Inc()
		o.logger.Warn("pending peek failed", "conversation", key, "error", err)
		return classify.IntentLocalSearch
	}
	if pa == nil {
		metrics.PendingActions.WithLabelValues("peek_miss").Inc()
		return classify.IntentLocalSearch
	}
	metrics.PendingActions.WithLabelValues("peek_hit").Inc()
	return o.registry.PendingIntent(pa.ActionKind)
}

// cachedContext reads the conversation context fail-open: an unreachable
// store degrades a follow-up to a fresh query, never to an error.
func (o *Orchestrator) cachedContext(ctx context.Context, key string) *store.ContextEntry {
	cached, err := o.contexts.Get(ctx, key)
	if err != nil {
		metrics.ContextCacheOps.WithLabelValues("error").Inc()
		o.logger.Warn("context get failed", "conversation", key, "error", err)
		return nil
	}
	if cached == nil {
		metrics.ContextCacheOps.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.ContextCacheOps.WithLabelValues("hit").Inc()
	return cached
}

// writeBackContext caches the turn for follow-ups. Only resumable
// intents are worth remembering, and only turns that produced a final
// answer: a fallback or a mid-flow location request must not become the
// context a follow-up inherits.
func (o *Orchestrator) writeBackContext(ctx context.Context, msg *channel.Message, state *turn.State) {
	if state.ShouldFallback || !classify.Resumable(state.Intent) {
		return
	}
	if state.ResponseKind == channel.ResponseLocationRequest {
		return
	}

	entry := store.ContextEntry{
		ConversationKey: msg.ConversationKey,
		LastIntent:      state.Intent,
		LastEntities:    state.Entities,
		LastQuery:       msg.Text,
	}
	if err := o.contexts.Put(ctx, entry); err != nil {
		o.logger.Warn("context put failed", "conversation", msg.ConversationKey, "error", err)
	}
}

// Serve pumps one adapter's inbound events through the orchestrator
// until the context is cancelled. Each event runs in its own goroutine;
// per-conversation ordering is enforced by the conversation locks, not
// by the pump.
func (o *Orchestrator) Serve(ctx context.Context, adapter channel.Adapter) {
	log := o.logger.With("channel", adapter.Name())
	log.Info("serving channel")
	for {
		select {
		case <-ctx.Done():
			log.Info("channel pump stopped")
			return
		case msg, ok := <-adapter.Incoming():
			if !ok {
				log.Info("channel closed")
				return
			}
			go func(msg *channel.Message) {
				resp := o.HandleMessage(ctx, msg)
				if err := adapter.SendMessage(msg.ConversationKey, resp); err != nil {
					log.Error("send failed",
						"conversation", msg.ConversationKey, "error", err)
				}
			}(msg)
		}
	}
}

func (o *Orchestrator) conversationLock(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &o.locks[h.Sum32()%lockShards]
}

func cloneEntities(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
