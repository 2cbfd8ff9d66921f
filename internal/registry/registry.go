package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/d23ai/sahay-gateway/internal/classify"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// Node names shared between the registry-built graph and the
// orchestrator.
const (
	NodeFallback = "fallback"
	NodeChat     = "chat"
)

// DomainConversation is the domain unknown intents resolve to.
const DomainConversation = "conversation"

type capability struct {
	intent  string
	domain  string
	handler graph.HandlerFunc
}

type pendingRoute struct {
	kindPrefix string
	intent     string
}

// Registry is the fixed capability table: intent name to handler, domain
// name to nested graph, pending-action kind to resuming intent. It is
// populated once at process start and immutable afterwards; adding a
// capability means registering it here and extending the keyword tables,
// nothing else.
type Registry struct {
	capabilities  map[string]capability
	domainGraphs  map[string]*graph.Graph
	subIntents    map[string]string
	pendingRoutes []pendingRoute
	fallback      graph.HandlerFunc
	built         bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		capabilities: make(map[string]capability),
		domainGraphs: make(map[string]*graph.Graph),
		subIntents:   make(map[string]string),
	}
}

// RegisterIntent maps an intent to its handler within a domain.
func (r *Registry) RegisterIntent(intent, domain string, h graph.HandlerFunc) error {
	if r.built {
		return fmt.Errorf("registry is frozen after BuildGraph")
	}
	if intent == "" || domain == "" || h == nil {
		return fmt.Errorf("intent, domain and handler are all required")
	}
	if _, dup := r.capabilities[intent]; dup {
		return fmt.Errorf("intent %q already registered", intent)
	}
	r.capabilities[intent] = capability{intent: intent, domain: domain, handler: h}
	return nil
}

// RegisterDomainGraph maps a domain to a nested graph that handles its
// own intent routing internally.
func (r *Registry) RegisterDomainGraph(domain string, g *graph.Graph) error {
	if r.built {
		return fmt.Errorf("registry is frozen after BuildGraph")
	}
	if _, dup := r.domainGraphs[domain]; dup {
		return fmt.Errorf("domain graph %q already registered", domain)
	}
	r.domainGraphs[domain] = g
	return nil
}

// RegisterDomainIntent declares that an intent is handled inside a
// nested domain graph. The domain graph routes it internally; the outer
// graph only needs to know which domain to hand it to.
func (r *Registry) RegisterDomainIntent(intent, domain string) error {
	if r.built {
		return fmt.Errorf("registry is frozen after BuildGraph")
	}
	if _, ok := r.domainGraphs[domain]; !ok {
		return fmt.Errorf("domain graph %q not registered", domain)
	}
	if _, dup := r.capabilities[intent]; dup {
		return fmt.Errorf("intent %q already registered as a flat capability", intent)
	}
	r.subIntents[intent] = domain
	return nil
}

// RegisterPendingRoute maps a pending-action kind (or kind prefix, e.g.
// "__events") to the intent that resumes it when the awaited message
// arrives.
func (r *Registry) RegisterPendingRoute(kindPrefix, intent string) {
	r.pendingRoutes = append(r.pendingRoutes, pendingRoute{kindPrefix: kindPrefix, intent: intent})
}

// SetFallback sets the handler invoked when another handler signals it
// could not produce a usable answer.
func (r *Registry) SetFallback(h graph.HandlerFunc) {
	r.fallback = h
}

// DomainOf returns the domain an intent routes through. Unknown intents
// resolve to the conversation domain, keeping the graph total.
func (r *Registry) DomainOf(intent string) string {
	if c, ok := r.capabilities[intent]; ok {
		return c.domain
	}
	if domain, ok := r.subIntents[intent]; ok {
		return domain
	}
	if _, ok := r.domainGraphs[intent]; ok {
		// A domain name used as an intent routes to its own graph.
		return intent
	}
	return DomainConversation
}

// PendingIntent resolves a pending-action kind to the intent that
// resumes it. Unmatched kinds fall back to local_search, mirroring how
// an unexpected-but-pending flow is still a search for "something near
// this location".
func (r *Registry) PendingIntent(actionKind string) string {
	for _, route := range r.pendingRoutes {
		if actionKind == route.kindPrefix || strings.HasPrefix(actionKind, route.kindPrefix) {
			return route.intent
		}
	}
	return classify.IntentLocalSearch
}

// BuildGraph assembles and validates the two-level routing graph:
//
//	domain_router -> <domain>_router -> handler -> fallback? -> end
//	              -> <domain subgraph> -----------^
//
// The domain/intent distinction is two layers of the same structure, not
// two dispatch mechanisms. Validation failure here is a startup error.
func (r *Registry) BuildGraph(subgraphTimeout time.Duration) (*graph.Graph, error) {
	if _, ok := r.capabilities[classify.IntentChat]; !ok {
		return nil, fmt.Errorf("chat capability must be registered")
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("fallback handler must be set")
	}

	b := graph.New("dispatch")

	// Entry: pure router on the intent's domain.
	b.AddNode("domain_router", nil)
	b.SetEntry("domain_router")

	domainIntents := make(map[string][]string)
	for intent, c := range r.capabilities {
		domainIntents[c.domain] = append(domainIntents[c.domain], intent)
	}

	domainTargets := []string{}

	// One router node per flat domain.
	domains := sortedKeys(domainIntents)
	for _, domain := range domains {
		routerName := domain + "_router"
		b.AddNode(routerName, nil)
		domainTargets = append(domainTargets, routerName)

		intents := domainIntents[domain]
		sort.Strings(intents)
		targets := append([]string{}, intents...)
		if domain != DomainConversation {
			// Unknown intents inside a domain still have somewhere to go.
			targets = append(targets, NodeChat)
		}
		b.AddConditionalEdge(routerName, r.intentEdge(intents), targets...)
	}

	// One node per capability handler.
	for _, domain := range domains {
		for _, intent := range domainIntents[domain] {
			if intent == classify.IntentChat {
				// The chat node carries the reserved name so routers can
				// target it directly.
				continue
			}
			b.AddNode(intent, r.capabilities[intent].handler)
			b.AddConditionalEdge(intent, checkFallback, NodeFallback, graph.End)
		}
	}
	b.AddNode(NodeChat, r.capabilities[classify.IntentChat].handler)
	b.AddConditionalEdge(NodeChat, checkFallback, NodeFallback, graph.End)

	// Nested domain graphs run under the time ceiling.
	for _, domain := range sortedKeys(r.domainGraphs) {
		b.AddSubgraph(domain, r.domainGraphs[domain], subgraphTimeout)
		b.AddConditionalEdge(domain, checkFallback, NodeFallback, graph.End)
		domainTargets = append(domainTargets, domain)
	}

	b.AddNode(NodeFallback, r.fallback)
	b.AddEdge(NodeFallback, graph.End)

	b.AddConditionalEdge("domain_router", r.domainEdge(), domainTargets...)

	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	r.built = true
	return g, nil
}

// domainEdge routes on the domain of the resolved intent. Total by
// construction: anything unknown lands in the conversation router.
func (r *Registry) domainEdge() graph.EdgeFunc {
	return func(state *turn.State) string {
		domain := r.DomainOf(state.Intent)
		if _, ok := r.domainGraphs[domain]; ok {
			return domain
		}
		return domain + "_router"
	}
}

// intentEdge routes to the handler node matching the intent, or chat
// when the intent does not belong to this domain's table.
func (r *Registry) intentEdge(intents []string) graph.EdgeFunc {
	known := make(map[string]bool, len(intents))
	for _, intent := range intents {
		known[intent] = true
	}
	return func(state *turn.State) string {
		if known[state.Intent] {
			if state.Intent == classify.IntentChat {
				return NodeChat
			}
			return state.Intent
		}
		return NodeChat
	}
}

// checkFallback is the fixed pair of choices after every handler node.
func checkFallback(state *turn.State) string {
	if state.ShouldFallback {
		return NodeFallback
	}
	return graph.End
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
