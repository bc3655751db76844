package bus

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalBusPublishDeliversToSubscribers(t *testing.T) {
	b := NewLocalBus()
	received := make(chan []byte, 1)

	sub, err := b.Subscribe("arena.events", func(_ string, payload []byte) {
		received <- payload
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	if err := b.Publish(context.Background(), "arena.events", []byte("hello")); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-received:
		if string(got) != "hello" {
			t.Errorf("got = %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestLocalBusUnsubscribeStopsDelivery(t *testing.T) {
	b := NewLocalBus()
	calls := 0
	sub, err := b.Subscribe("x", func(_ string, _ []byte) { calls++ })
	if err != nil {
		t.Fatal(err)
	}

	sub.Unsubscribe()
	b.Publish(context.Background(), "x", []byte("payload"))

	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestLocalBusRequestWithNoResponderFails(t *testing.T) {
	b := NewLocalBus()
	if _, err := b.Request(context.Background(), "missing", nil); !errors.Is(err, ErrNoResponder) {
		t.Errorf("err = %v, want ErrNoResponder", err)
	}
}

func TestLocalBusRequestReachesRegisteredResponder(t *testing.T) {
	b := NewLocalBus()
	b.RegisterResponder("turn.al", func(_ context.Context, payload []byte) ([]byte, error) {
		return append([]byte("reply:"), payload...), nil
	})

	got, err := b.Request(context.Background(), "turn.al", []byte("req"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "reply:req" {
		t.Errorf("got = %s", got)
	}
}

func TestLocalBusRequestPropagatesResponderError(t *testing.T) {
	b := NewLocalBus()
	want := errors.New("agent crashed")
	b.RegisterResponder("turn.al", func(_ context.Context, _ []byte) ([]byte, error) {
		return nil, want
	})

	if _, err := b.Request(context.Background(), "turn.al", nil); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestLocalBusMultipleSubscribersAllReceive(t *testing.T) {
	b := NewLocalBus()
	var count int32

	for i := 0; i < 3; i++ {
		if _, err := b.Subscribe("fanout", func(_ string, _ []byte) { count++ }); err != nil {
			t.Fatal(err)
		}
	}
	b.Publish(context.Background(), "fanout", []byte("x"))

	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}
