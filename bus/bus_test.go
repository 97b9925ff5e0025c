package bus_test

import (
	"sync"
	"testing"

	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/bus"
	"github.com/fwojciec/kai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call[T any] struct {
	next, prev T
}

func record[T any](calls *[]call[T]) func(next, prev T) {
	return func(next, prev T) {
		*calls = append(*calls, call[T]{next: next, prev: prev})
	}
}

func TestSubscribe_ReplaysCurrentValueOnce(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[string]("current-user-id")
	w := bus.Provide(b, key, "u1")
	w.Publish("u2")

	var calls []call[string]
	bus.Subscribe(b, key, record(&calls))

	require.Len(t, calls, 1)
	assert.Equal(t, call[string]{next: "u2", prev: "u2"}, calls[0])
}

func TestPublish_NotifiesWithNextAndPrev(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[int]("counter")
	w := bus.Provide(b, key, 0)

	var calls []call[int]
	bus.Subscribe(b, key, record(&calls))
	w.Publish(1)
	w.Publish(2)

	assert.Equal(t, []call[int]{{0, 0}, {1, 0}, {2, 1}}, calls)
	assert.Equal(t, 2, w.Value())
}

func TestPublish_CoalescesEqualValues(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[kai.RoomState]("room")
	rooms := []kai.Room{{ID: "1"}, {ID: "2"}}
	w := bus.Provide(b, key, kai.RoomState{Rooms: rooms, SelectedRoomID: "1"})

	var calls []call[kai.RoomState]
	bus.Subscribe(b, key, record(&calls))

	// Same slice, same scalars: shallowly equal.
	w.Publish(kai.RoomState{Rooms: rooms, SelectedRoomID: "1"})
	w.Publish(kai.RoomState{Rooms: rooms, SelectedRoomID: "1"})
	assert.Len(t, calls, 1)

	// A new slice with identical elements is a change.
	w.Publish(kai.RoomState{Rooms: append([]kai.Room(nil), rooms...), SelectedRoomID: "1"})
	assert.Len(t, calls, 2)
}

func TestPublish_InPlaceMutationIsNotObserved(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[[]string]("ids")
	ids := []string{"a", "b"}
	w := bus.Provide(b, key, ids)

	var calls []call[[]string]
	bus.Subscribe(b, key, record(&calls))
	ids[0] = "z"
	w.Publish(ids)

	assert.Len(t, calls, 1)
}

func TestPublish_ScenarioRoomSwitch(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[kai.RoomState]("room")
	rooms := []kai.Room{{ID: "1", Title: "General"}, {ID: "2", Title: "Random"}}
	w := bus.Provide(b, key, kai.RoomState{Rooms: rooms, SelectedRoomID: "1"})

	var calls []call[kai.RoomState]
	bus.Subscribe(b, key, func(next, prev kai.RoomState) {
		if next.SelectedRoomID == prev.SelectedRoomID {
			return // replay
		}
		calls = append(calls, call[kai.RoomState]{next: next, prev: prev})
	})
	w.Publish(kai.RoomState{Rooms: rooms, SelectedRoomID: "2"})

	require.Len(t, calls, 1)
	assert.Equal(t, "1", calls[0].prev.SelectedRoomID)
	assert.Equal(t, "2", calls[0].next.SelectedRoomID)
	assert.Equal(t, calls[0].prev.Rooms, calls[0].next.Rooms)
}

func TestPublish_SubscriberOrder(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[int]("n")
	w := bus.Provide(b, key, 0)

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		bus.Subscribe(b, key, func(next, prev int) {
			if next != prev {
				order = append(order, name)
			}
		})
	}
	w.Publish(1)

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestPublish_ReentrantPublishIsDeliveredInOrder(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[int]("n")
	w := bus.Provide(b, key, 0)

	var first, second []int
	bus.Subscribe(b, key, func(next, prev int) {
		first = append(first, next)
		if next == 1 {
			w.Publish(2)
			w.Publish(3)
		}
	})
	bus.Subscribe(b, key, func(next, prev int) {
		second = append(second, next)
	})
	w.Publish(1)

	assert.Equal(t, []int{0, 1, 2, 3}, first)
	assert.Equal(t, []int{0, 1, 2, 3}, second)
}

func TestPublish_ReentrantPublishOnOtherChannel(t *testing.T) {
	t.Parallel()

	b := bus.New()
	aKey := bus.NewKey[int]("a")
	bKey := bus.NewKey[string]("b")
	aw := bus.Provide(b, aKey, 0)
	bw := bus.Provide(b, bKey, "")

	var got []string
	bus.Subscribe(b, aKey, func(next, prev int) {
		if next == 1 {
			bw.Publish("from-a")
		}
	})
	bus.Subscribe(b, bKey, func(next, prev string) {
		got = append(got, next)
	})
	aw.Publish(1)

	assert.Equal(t, []string{"", "from-a"}, got)
}

func TestSubscribe_DuringDispatchSkipsEarlierChanges(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[int]("n")
	w := bus.Provide(b, key, 0)

	var late []call[int]
	bus.Subscribe(b, key, func(next, prev int) {
		if next == 1 {
			bus.Subscribe(b, key, record(&late))
		}
	})
	w.Publish(1)
	w.Publish(2)

	assert.Equal(t, []call[int]{{1, 1}, {2, 1}}, late)
}

func TestUnsubscribe_IsIdempotent(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[int]("n")
	w := bus.Provide(b, key, 0)

	var calls []call[int]
	unsubscribe := bus.Subscribe(b, key, record(&calls))
	unsubscribe()
	unsubscribe()
	w.Publish(1)

	assert.Len(t, calls, 1)
}

func TestUnsubscribe_DuringDispatchStopsDelivery(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[int]("n")
	w := bus.Provide(b, key, 0)

	var second []int
	var unsubscribeSecond func()
	bus.Subscribe(b, key, func(next, prev int) {
		if next == 1 {
			unsubscribeSecond()
		}
	})
	unsubscribeSecond = bus.Subscribe(b, key, func(next, prev int) {
		second = append(second, next)
	})
	w.Publish(1)

	assert.Equal(t, []int{0}, second)
}

func TestSubscribe_UnknownChannelPanics(t *testing.T) {
	t.Parallel()

	b := bus.New()
	assert.PanicsWithError(t, `subscribe "room": unknown channel`, func() {
		bus.Subscribe(b, bus.NewKey[kai.RoomState]("room"), func(next, prev kai.RoomState) {})
	})
}

func TestSubscribe_TypeMismatchPanics(t *testing.T) {
	t.Parallel()

	b := bus.New()
	bus.Provide(b, bus.NewKey[string]("theme"), "dark")

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, kai.ErrChannelType)
	}()
	bus.Subscribe(b, bus.NewKey[int]("theme"), func(next, prev int) {})
}

func TestProvide_DuplicateInSameScopePanics(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[int]("n")
	bus.Provide(b, key, 0)

	assert.PanicsWithError(t, `provide "n": channel already provided`, func() {
		bus.Provide(b, key, 1)
	})
}

func TestScope_LookupWalksToRoot(t *testing.T) {
	t.Parallel()

	root := bus.New()
	key := bus.NewKey[string]("theme")
	w := bus.Provide(root, key, "light")

	child := root.Scope().Scope()
	var got []string
	bus.Subscribe(child, key, func(next, prev string) {
		got = append(got, next)
	})
	w.Publish("dark")

	assert.Equal(t, []string{"light", "dark"}, got)
}

func TestScope_ChildShadowsParent(t *testing.T) {
	t.Parallel()

	root := bus.New()
	key := bus.NewKey[string]("theme")
	bus.Provide(root, key, "light")
	child := root.Scope()
	bus.Provide(child, key, "dark")

	var fromChild, fromRoot string
	bus.Subscribe(child, key, func(next, prev string) { fromChild = next })
	bus.Subscribe(root, key, func(next, prev string) { fromRoot = next })

	assert.Equal(t, "dark", fromChild)
	assert.Equal(t, "light", fromRoot)
}

func TestScope_CloseUnsubscribes(t *testing.T) {
	t.Parallel()

	root := bus.New()
	key := bus.NewKey[int]("n")
	w := bus.Provide(root, key, 0)

	child := root.Scope()
	var calls []call[int]
	bus.Subscribe(child, key, record(&calls))
	child.Close()
	child.Close()
	w.Publish(1)

	assert.Len(t, calls, 1)
}

func TestScope_CloseReleasesProvidedChannels(t *testing.T) {
	t.Parallel()

	root := bus.New()
	key := bus.NewKey[int]("n")
	child := root.Scope()
	w := bus.Provide(child, key, 0)
	sub := child.Scope()
	bus.Subscribe(sub, key, func(next, prev int) {})

	root.Close()

	assert.PanicsWithError(t, `publish "n": channel closed`, func() { w.Publish(1) })
	assert.PanicsWithError(t, `subscribe "n": unknown channel`, func() {
		bus.Subscribe(root, key, func(next, prev int) {})
	})
	assert.Panics(t, func() { bus.Provide(child, key, 0) })
}

func TestWriter_CloseAllowsReprovide(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[int]("n")
	w := bus.Provide(b, key, 0)

	var calls []call[int]
	bus.Subscribe(b, key, record(&calls))
	w.Close()
	w.Close()

	w2 := bus.Provide(b, key, 10)
	w2.Publish(11)

	assert.Len(t, calls, 1)
	assert.Equal(t, 11, w2.Value())
}

func TestWriter_Update(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey[kai.FooterState]("footer")
	w := bus.Provide(b, key, kai.FooterState{Draft: "hi"})

	w.Update(func(s kai.FooterState) kai.FooterState {
		s.EnterToSend = true
		return s
	})

	assert.Equal(t, kai.FooterState{Draft: "hi", EnterToSend: true}, w.Value())
	assert.Equal(t, "footer", w.Name())
}

func TestKey_WithEqual(t *testing.T) {
	t.Parallel()

	b := bus.New()
	key := bus.NewKey("ids", bus.WithEqual(func(a, b []string) bool {
		return len(a) == len(b)
	}))
	w := bus.Provide(b, key, []string{"a"})

	var calls []call[[]string]
	bus.Subscribe(b, key, record(&calls))
	w.Publish([]string{"b"})
	w.Publish([]string{"b", "c"})

	assert.Len(t, calls, 2)
}

func TestPublish_ReportsMetrics(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	counts := map[string]int{}
	m := &mock.Metrics{
		ChannelPublishedFn: func(channel string) {
			mu.Lock()
			counts["published:"+channel]++
			mu.Unlock()
		},
		ChannelCoalescedFn: func(channel string) {
			mu.Lock()
			counts["coalesced:"+channel]++
			mu.Unlock()
		},
	}
	b := bus.New(bus.WithMetrics(m))
	w := bus.Provide(b.Scope(), bus.NewKey[int]("n"), 0)
	w.Publish(1)
	w.Publish(1)
	w.Publish(2)

	assert.Equal(t, map[string]int{"published:n": 2, "coalesced:n": 1}, counts)
}

func TestPublish_ConcurrentWritersOnDistinctChannels(t *testing.T) {
	t.Parallel()

	b := bus.New()
	keys := []bus.Key[int]{bus.NewKey[int]("a"), bus.NewKey[int]("b")}
	var wg sync.WaitGroup
	results := make([][]int, len(keys))
	for i, key := range keys {
		w := bus.Provide(b, key, 0)
		bus.Subscribe(b, key, func(next, prev int) {
			results[i] = append(results[i], next)
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 1; n <= 100; n++ {
				w.Publish(n)
			}
		}()
	}
	wg.Wait()

	for _, got := range results {
		require.Len(t, got, 101)
		assert.Equal(t, 100, got[100])
	}
}
