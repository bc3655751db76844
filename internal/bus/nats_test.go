package bus

import (
	"context"
	"os"
	"testing"
	"time"
)

// newTestNATSBus connects to ARENA_NATS_URL for an integration pass
// against a real server; unit coverage of the Bus contract lives in
// local_test.go via LocalBus, which satisfies the same interface.
func newTestNATSBus(t *testing.T) Bus {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping nats integration test in short mode")
	}
	url := os.Getenv("ARENA_NATS_URL")
	if url == "" {
		t.Skip("ARENA_NATS_URL not set, skipping nats integration test")
	}

	b, err := NewNATSBus(url)
	if err != nil {
		t.Skipf("nats not reachable: %v", err)
	}
	return b
}

func TestNATSBusPublishSubscribeRoundTrips(t *testing.T) {
	b := newTestNATSBus(t)
	defer b.Close()

	received := make(chan []byte, 1)
	sub, err := b.Subscribe("integration.test.subject", func(_ string, payload []byte) {
		received <- payload
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	if err := b.Publish(context.Background(), "integration.test.subject", []byte("ping")); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-received:
		if string(got) != "ping" {
			t.Errorf("got = %s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message never arrived")
	}
}
