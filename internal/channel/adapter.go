package channel

import "context"

// Kind is the payload type of an inbound message.
type Kind string

const (
	KindText     Kind = "text"
	KindLocation Kind = "location"
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
)

// Location is a shared GPS coordinate pair.
type Location struct {
	Lat float64
	Lon float64
}

// Message represents one inbound event from a channel.
type Message struct {
	ID              string
	Channel         string
	ConversationKey string
	Kind            Kind
	Text            string
	Location        *Location
	MediaRef        string
	Metadata        map[string]string
	Timestamp       int64
}

// ResponseKind is the payload type of an outbound reply.
type ResponseKind string

const (
	ResponseText            ResponseKind = "text"
	ResponseImage           ResponseKind = "image"
	ResponseAudio           ResponseKind = "audio"
	ResponseLocationRequest ResponseKind = "location_request"
)

// Response represents a reply to send back to a channel.
type Response struct {
	Content  string
	Kind     ResponseKind
	Language string
	Metadata map[string]string
}

// Adapter is the interface every inbound channel implements.
type Adapter interface {
	// Start starts the channel adapter.
	Start(ctx context.Context) error

	// Stop stops the channel adapter.
	Stop() error

	// SendMessage sends a reply to the given conversation.
	SendMessage(conversationKey string, resp *Response) error

	// Incoming returns the channel of inbound messages.
	Incoming() <-chan *Message

	// Name returns the adapter name.
	Name() string

	// IsEnabled reports whether the adapter is configured.
	IsEnabled() bool
}
