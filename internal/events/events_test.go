package events

import (
	"errors"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventUploadState)
	bus.PublishUploadState("a.png", 42, true)

	e := receive(t, ch)
	up, ok := e.(*UploadStateEvent)
	if !ok {
		t.Fatalf("expected *UploadStateEvent, got %T", e)
	}
	if up.Name != "a.png" || up.Size != 42 || !up.Uploading {
		t.Errorf("unexpected event payload: %+v", up)
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	authCh := bus.Subscribe(EventAuthExpired)
	uploadCh := bus.Subscribe(EventUploadState)

	bus.PublishAuthExpired("list", errors.New("401"))

	e := receive(t, authCh)
	if e.Type() != EventAuthExpired {
		t.Errorf("expected %s, got %s", EventAuthExpired, e.Type())
	}

	select {
	case got := <-uploadCh:
		t.Errorf("upload subscriber should not receive %s", got.Type())
	default:
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	all := bus.SubscribeAll()

	bus.PublishLog(InfoLevel, "hello", "list", nil)
	bus.PublishAuthExpired("delete", nil)

	if got := receive(t, all).Type(); got != EventLog {
		t.Errorf("first event = %s, want %s", got, EventLog)
	}
	if got := receive(t, all).Type(); got != EventAuthExpired {
		t.Errorf("second event = %s, want %s", got, EventAuthExpired)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	_ = bus.Subscribe(EventUploadState)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.PublishUploadState("x.pdf", int64(i), i%2 == 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	if dropped := bus.GetDroppedEventCount(); dropped != 8 {
		t.Errorf("dropped = %d, want 8", dropped)
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.Subscribe(EventLog)

	bus.Close()
	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}

	// Publishing after close should not panic
	bus.PublishLog(ErrorLevel, "late", "", nil)

	late := bus.Subscribe(EventLog)
	if _, ok := <-late; ok {
		t.Error("subscribing after close should return a closed channel")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventNotification)
	bus.Unsubscribe(EventNotification, ch)

	bus.Publish(&NotificationEvent{
		BaseEvent: BaseEvent{EventType: EventNotification, Time: time.Now()},
		Kind:      "success",
		Message:   "File deleted",
	})

	select {
	case e := <-ch:
		t.Errorf("unsubscribed channel received %v", e)
	default:
	}

	all := bus.SubscribeAll()
	bus.UnsubscribeAll(all)
	bus.PublishLog(InfoLevel, "x", "", nil)
	select {
	case e := <-all:
		t.Errorf("unsubscribed channel received %v", e)
	default:
	}
}

func TestNewEventBus_BufferBounds(t *testing.T) {
	if got := NewEventBus(0).bufferSize; got <= 0 {
		t.Errorf("default buffer should be positive, got %d", got)
	}
	if got := NewEventBus(1 << 20).bufferSize; got > 5000 {
		t.Errorf("buffer should be capped, got %d", got)
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
