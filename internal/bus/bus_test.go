package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishWithoutSubscriberDrops(t *testing.T) {
	loop := &QueueLoop{}
	b := New(loop, nil)

	assert.False(t, b.NotifyChanged("1"))
	assert.Equal(t, 0, loop.Pending())
}

func TestBus_DeliveryIsDeferredToLoop(t *testing.T) {
	loop := &QueueLoop{}
	b := New(loop, nil)

	var got []Event
	b.Subscribe(func(ev Event) { got = append(got, ev) })

	assert.True(t, b.NotifyChanged("42"))
	assert.Empty(t, got, "subscriber must not run on the producer")

	assert.Equal(t, 1, loop.Drain())
	if assert.Len(t, got, 1) {
		assert.Equal(t, NotificationChanged, got[0].Kind)
		assert.Equal(t, "42", got[0].Key)
		assert.False(t, got[0].At.IsZero())
	}
}

func TestBus_NoReplayForLateSubscriber(t *testing.T) {
	loop := &QueueLoop{}
	b := New(loop, nil)

	b.NotifyAppsChanged()

	var count int
	b.Subscribe(func(Event) { count++ })
	loop.Drain()

	assert.Equal(t, 0, count)
}

func TestBus_SubscribeReplacesPrevious(t *testing.T) {
	loop := &QueueLoop{}
	b := New(loop, nil)

	var first, second int
	b.Subscribe(func(Event) { first++ })
	b.NotifyAppsChanged()
	b.Subscribe(func(Event) { second++ })
	b.NotifyAppsChanged()
	loop.Drain()

	assert.Equal(t, 0, first, "queued delivery for a replaced subscriber is discarded")
	assert.Equal(t, 1, second)
}

func TestBus_Unsubscribe(t *testing.T) {
	loop := &QueueLoop{}
	b := New(loop, nil)

	var count int
	unsubscribe := b.Subscribe(func(Event) { count++ })
	b.NotifyChanged("a")
	unsubscribe()
	unsubscribe()
	b.NotifyChanged("b")
	loop.Drain()

	assert.Equal(t, 0, count)
	assert.False(t, b.HasSubscriber())
}

func TestBus_StaleUnsubscribeKeepsNewSubscriber(t *testing.T) {
	loop := &QueueLoop{}
	b := New(loop, nil)

	unsubscribeOld := b.Subscribe(func(Event) {})
	var count int
	b.Subscribe(func(Event) { count++ })
	unsubscribeOld()

	assert.True(t, b.HasSubscriber())
	b.NotifyAppsChanged()
	loop.Drain()
	assert.Equal(t, 1, count)
}

func TestBus_SubscriberPanicIsContained(t *testing.T) {
	loop := &QueueLoop{}
	b := New(loop, nil)

	var count int
	b.Subscribe(func(ev Event) {
		count++
		if ev.Key == "boom" {
			panic("subscriber failure")
		}
	})
	b.NotifyChanged("boom")
	b.NotifyChanged("ok")

	assert.NotPanics(t, func() { loop.Drain() })
	assert.Equal(t, 2, count)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	loop := &QueueLoop{}
	b := New(loop, nil)

	var count int
	b.Subscribe(func(Event) { count++ })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.NotifyChanged("k")
			}
		}()
	}
	wg.Wait()
	loop.Drain()

	assert.Equal(t, 400, count)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "notification_changed", NotificationChanged.String())
	assert.Equal(t, "apps_changed", AppsChanged.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
