package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/d23ai/sahay-gateway/internal/store"
)

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	if _, err := NewScheduler("not a schedule"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestSweepDropsExpiredEntries(t *testing.T) {
	contexts := store.NewMemoryContextStore(time.Nanosecond)
	pending := store.NewMemoryPendingStore(time.Nanosecond)

	ctx := context.Background()
	contexts.Put(ctx, store.ContextEntry{ConversationKey: "c1", LastIntent: "weather"})
	pending.Save(ctx, "c1", "__weather__", "weather")
	time.Sleep(time.Millisecond)

	s, err := NewScheduler("@every 1h", contexts, pending)
	if err != nil {
		t.Fatal(err)
	}
	s.sweep()

	if entry, _ := contexts.Get(ctx, "c1"); entry != nil {
		t.Error("expected context entry swept")
	}
	if pa, _ := pending.Peek(ctx, "c1"); pa != nil {
		t.Error("expected pending action swept")
	}
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler("@every 1h")
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop()
}
