package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscriber(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(&Event{
		Type:     EventTaskCreated,
		Message:  "task created",
		Metadata: map[string]string{"task_id": "t1"},
	})

	select {
	case ev := <-sub:
		assert.Equal(t, EventTaskCreated, ev.Type)
		assert.Equal(t, "t1", ev.Metadata["task_id"])
		assert.NotEmpty(t, ev.ID, "event id is filled in on publish")
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribedChannelIsClosed(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	b.Unsubscribe(sub)

	_, open := <-sub
	require.False(t, open)
}
