// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func receive(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected a message")
		return ""
	}
}

func assertSilent(t *testing.T, ch chan string) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	ch := hub.Register("ariel", false)
	assert.NotNil(t, ch)
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 1, hub.UserCount())

	// second tab of the same account
	ch2 := hub.Register("ariel", false)
	assert.Equal(t, 2, hub.ClientCount())
	assert.Equal(t, 1, hub.UserCount())

	hub.Unregister("ariel", ch)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister("ariel", ch2)
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 0, hub.UserCount())

	_, open := <-ch
	assert.False(t, open)
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()

	tab1 := hub.Register("ariel", false)
	tab2 := hub.Register("ariel", false)
	other := hub.Register("rapunzel", false)

	hub.SendToUser("ariel", "approved")

	assert.Equal(t, "approved", receive(t, tab1))
	assert.Equal(t, "approved", receive(t, tab2))
	assertSilent(t, other)

	hub.Unregister("ariel", tab1)
	hub.Unregister("ariel", tab2)
	hub.Unregister("rapunzel", other)
}

func TestHub_SendToAdmins(t *testing.T) {
	hub := NewHub()

	moderator := hub.Register("mod", true)
	visitor := hub.Register("ariel", false)

	hub.SendToAdmins("new submission")

	assert.Equal(t, "new submission", receive(t, moderator))
	assertSilent(t, visitor)

	hub.Unregister("mod", moderator)
	hub.Unregister("ariel", visitor)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()

	ch1 := hub.Register("ariel", false)
	ch2 := hub.Register("mod", true)

	hub.Broadcast("broadcast-message")

	assert.Equal(t, "broadcast-message", receive(t, ch1))
	assert.Equal(t, "broadcast-message", receive(t, ch2))

	hub.Unregister("ariel", ch1)
	hub.Unregister("mod", ch2)
}

func TestHub_NonBlockingSend(t *testing.T) {
	hub := NewHub()

	ch := hub.Register("ariel", false)

	for range clientBuffer {
		hub.SendToUser("ariel", "msg")
	}

	done := make(chan bool)
	go func() {
		hub.SendToUser("ariel", "overflow")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("SendToUser blocked on full channel")
	}

	hub.Unregister("ariel", ch)
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	const numGoroutines = 100

	channels := make([]chan string, numGoroutines)
	for i := range numGoroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			channels[idx] = hub.Register("ariel", idx%2 == 0)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines, hub.ClientCount())

	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.SendToUser("ariel", "concurrent")
		}()
		go func() {
			defer wg.Done()
			hub.SendToAdmins("concurrent")
		}()
	}
	wg.Wait()

	for i := range numGoroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister("ariel", channels[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.ClientCount())
}
