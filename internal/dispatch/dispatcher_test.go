package dispatch

import (
	"fmt"
	"sync"
	"testing"

	"github.com/agent-console/agentstream/internal/event"
)

func TestDeliveryOrderMatchesRegistration(t *testing.T) {
	d := New()

	var order []string
	d.Subscribe(func(event.Event) { order = append(order, "a") })
	d.Subscribe(func(event.Event) { order = append(order, "b") })
	d.Subscribe(func(event.Event) { order = append(order, "c") })

	d.Publish(event.NewTextMessage("s1", "hello"))

	if got := fmt.Sprint(order); got != "[a b c]" {
		t.Errorf("delivery order = %v, want [a b c]", order)
	}
}

func TestEventsArriveInPublishOrder(t *testing.T) {
	d := New()

	var deltas []string
	d.Subscribe(func(ev event.Event) {
		deltas = append(deltas, ev.Data.(event.TextMessageContent).Delta)
	})

	for i := 0; i < 10; i++ {
		d.Publish(event.NewTextMessage("s1", fmt.Sprintf("%d", i)))
	}

	for i, got := range deltas {
		if want := fmt.Sprintf("%d", i); got != want {
			t.Errorf("delta %d = %q, want %q", i, got, want)
		}
	}
	if len(deltas) != 10 {
		t.Errorf("got %d deliveries, want 10", len(deltas))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	d := New()

	var aCount, bCount int
	idA := d.Subscribe(func(event.Event) { aCount++ })
	d.Subscribe(func(event.Event) { bCount++ })

	d.Publish(event.NewTextMessage("s1", "one"))
	d.Unsubscribe(idA)
	d.Publish(event.NewTextMessage("s1", "two"))

	if aCount != 1 {
		t.Errorf("unsubscribed fn called %d times, want 1", aCount)
	}
	if bCount != 2 {
		t.Errorf("remaining fn called %d times, want 2", bCount)
	}

	// Unknown ids are no-ops.
	d.Unsubscribe("not-an-id")
	if got := d.SubscriberCount(); got != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", got)
	}
}

func TestSubscriptionIDsUnique(t *testing.T) {
	d := New()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := d.Subscribe(func(event.Event) {})
		if id == "" {
			t.Fatal("empty subscription id")
		}
		if seen[id] {
			t.Fatalf("duplicate subscription id %q", id)
		}
		seen[id] = true
	}
}

func TestPanickingSubscriberDoesNotStarveOthers(t *testing.T) {
	d := New()

	var delivered []string
	d.Subscribe(func(event.Event) { panic("boom") })
	d.Subscribe(func(ev event.Event) {
		delivered = append(delivered, ev.Data.(event.TextMessageContent).Delta)
	})

	d.Publish(event.NewTextMessage("s1", "first"))
	d.Publish(event.NewTextMessage("s1", "second"))

	if len(delivered) != 2 || delivered[0] != "first" || delivered[1] != "second" {
		t.Errorf("later subscriber got %v, want [first second]", delivered)
	}
}

func TestCloseDropsSubscribers(t *testing.T) {
	d := New()

	var count int
	d.Subscribe(func(event.Event) { count++ })
	d.Subscribe(func(event.Event) { count++ })
	d.Close()
	d.Publish(event.NewTextMessage("s1", "after close"))

	if count != 0 {
		t.Errorf("subscribers called %d times after Close, want 0", count)
	}
	if got := d.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}
}

func TestConcurrentPublish(t *testing.T) {
	d := New()

	var mu sync.Mutex
	total := 0
	d.Subscribe(func(event.Event) {
		mu.Lock()
		total++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d.Publish(event.NewTextMessage(fmt.Sprintf("s%d", n), "x"))
			}
		}(i)
	}
	wg.Wait()

	if total != 10*50 {
		t.Errorf("delivered %d events, want %d", total, 10*50)
	}
}
