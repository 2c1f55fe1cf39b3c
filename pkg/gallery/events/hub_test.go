package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/genaiterest/pkg/gallery/events"
)

func runHub(t *testing.T) *events.Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := events.NewHub()
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

func receive(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return events.Event{}
	}
}

func TestHub_PublishToTopic(t *testing.T) {
	hub := runHub(t)

	a := make(chan events.Event, 4)
	b := make(chan events.Event, 4)
	other := make(chan events.Event, 4)
	hub.Subscribe(a, "gallery-1")
	hub.Subscribe(b, "gallery-1")
	hub.Subscribe(other, "gallery-2")

	hub.Publish("gallery-1", events.Event{Name: "cell", Data: 1})

	assert.Equal(t, events.Event{Name: "cell", Data: 1}, receive(t, a))
	assert.Equal(t, events.Event{Name: "cell", Data: 1}, receive(t, b))

	hub.Publish("gallery-2", events.Event{Name: "done"})
	assert.Equal(t, "done", receive(t, other).Name)
	assert.Empty(t, a)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := runHub(t)

	ch := make(chan events.Event, 4)
	hub.Subscribe(ch, "gallery")
	hub.Unsubscribe(ch, "gallery")

	hub.Publish("gallery", events.Event{Name: "cell"})

	// Publishes are handled in order, so once the probe arrives the first
	// event has been dispatched too.
	probe := make(chan events.Event, 2)
	hub.Subscribe(probe, "gallery")
	hub.Publish("gallery", events.Event{Name: "probe"})
	for receive(t, probe).Name != "probe" {
	}

	assert.Empty(t, ch)
}

func TestHub_DropsForSlowSubscriber(t *testing.T) {
	hub := runHub(t)

	slow := make(chan events.Event, 1)
	fast := make(chan events.Event, 8)
	hub.Subscribe(slow, "gallery")
	hub.Subscribe(fast, "gallery")

	for i := 0; i < 5; i++ {
		hub.Publish("gallery", events.Event{Name: "cell", Data: i})
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, i, receive(t, fast).Data)
	}
	require.Len(t, slow, 1)
	assert.Equal(t, 0, (<-slow).Data)
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := events.NewHub()
	go hub.Run(ctx)
	cancel()
	<-hub.Done()

	ch := make(chan events.Event, 1)
	done := make(chan struct{})
	go func() {
		hub.Subscribe(ch, "gallery")
		for i := 0; i < 200; i++ {
			hub.Publish("gallery", events.Event{Name: "cell"})
		}
		hub.Unsubscribe(ch, "gallery")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after stop")
	}
}
