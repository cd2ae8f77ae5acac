package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	bus := New[string]()
	a := bus.Subscribe()
	b := bus.Subscribe()

	assert.Equal(t, 2, bus.Publish("grouped"))
	assert.Equal(t, "grouped", <-a)
	assert.Equal(t, "grouped", <-b)

	bus.Unsubscribe(a)
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, bus.Publish("solved"))
	assert.Equal(t, "solved", <-b)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New[int]()
	ch := bus.Subscribe()
	for i := 0; i < bufferSize+3; i++ {
		bus.Publish(i)
	}
	assert.Equal(t, uint64(3), bus.Dropped())
	require.Len(t, ch, bufferSize)
	assert.Equal(t, 0, <-ch)
}

func TestBusClose(t *testing.T) {
	bus := New[int]()
	ch := bus.Subscribe()
	bus.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, bus.Publish(1))

	late := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)
	assert.NotPanics(t, func() { bus.Unsubscribe(ch) })
	assert.NotPanics(t, bus.Close)
}

func TestNilBusPublish(t *testing.T) {
	var bus *Bus[int]
	assert.Zero(t, bus.Publish(1))
}
