package webchat

import (
	"testing"

	"github.com/d23ai/sahay-gateway/internal/channel"
)

func TestAdapterName(t *testing.T) {
	adapter := NewWebChatAdapter(8080)
	if adapter.Name() != "webchat" {
		t.Errorf("Expected webchat, got %s", adapter.Name())
	}
}

func TestIsEnabled(t *testing.T) {
	if NewWebChatAdapter(0).IsEnabled() {
		t.Error("port 0 should disable the adapter")
	}
	if !NewWebChatAdapter(8080).IsEnabled() {
		t.Error("a positive port should enable the adapter")
	}
}

func TestTranslateMessage(t *testing.T) {
	msg := translate("u1", WSMessage{Type: "message", Content: "weather"})
	if msg == nil {
		t.Fatal("expected a message")
	}
	if msg.Kind != channel.KindText || msg.Text != "weather" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.ConversationKey != "u1" {
		t.Errorf("expected conversation key u1, got %s", msg.ConversationKey)
	}
}

func TestTranslateLocation(t *testing.T) {
	msg := translate("u1", WSMessage{Type: "location", Lat: 19.07, Lon: 72.87})
	if msg == nil {
		t.Fatal("expected a message")
	}
	if msg.Kind != channel.KindLocation {
		t.Fatalf("expected location kind, got %s", msg.Kind)
	}
	if msg.Location.Lat != 19.07 || msg.Location.Lon != 72.87 {
		t.Errorf("unexpected location %+v", msg.Location)
	}
}

func TestTranslateUnknownTypeDropped(t *testing.T) {
	if msg := translate("u1", WSMessage{Type: "typing"}); msg != nil {
		t.Errorf("expected nil, got %+v", msg)
	}
}
