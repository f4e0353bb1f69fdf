package router

import (
	"sync"
	"testing"
	"time"
)

func TestBufferSendReceive(t *testing.T) {
	b := NewGrowableBuffer[int](4)

	for i := 0; i < 3; i++ {
		if !b.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}

	for i := 0; i < 3; i++ {
		got, ok := b.Receive()
		if !ok || got != i {
			t.Errorf("Receive() = (%d, %t), want (%d, true)", got, ok, i)
		}
	}
}

func TestBufferGrowsWhenFull(t *testing.T) {
	b := NewGrowableBuffer[int](2)

	for i := 0; i < 100; i++ {
		b.Send(i)
	}
	if b.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", b.Len())
	}
	if b.Stats().ResizeCount == 0 {
		t.Error("ResizeCount = 0, want growth")
	}

	// FIFO order survives growth
	for i := 0; i < 100; i++ {
		got, ok := b.TryReceive()
		if !ok || got != i {
			t.Fatalf("TryReceive() = (%d, %t), want (%d, true)", got, ok, i)
		}
	}
}

func TestBufferGrowPreservesWrappedItems(t *testing.T) {
	b := NewGrowableBuffer[int](4)

	// Advance the read position so the live region wraps
	for i := 0; i < 4; i++ {
		b.Send(i)
	}
	b.TryReceive()
	b.TryReceive()
	b.Send(4)
	b.Send(5)

	// Ring is full and wrapped; next send grows
	b.Send(6)

	want := []int{2, 3, 4, 5, 6}
	for _, w := range want {
		got, ok := b.TryReceive()
		if !ok || got != w {
			t.Fatalf("TryReceive() = (%d, %t), want (%d, true)", got, ok, w)
		}
	}
}

func TestBufferTryReceiveEmpty(t *testing.T) {
	b := NewGrowableBuffer[string](4)

	if got, ok := b.TryReceive(); ok {
		t.Errorf("TryReceive() on empty buffer = (%q, true), want ok=false", got)
	}
}

func TestBufferClose(t *testing.T) {
	b := NewGrowableBuffer[int](4)

	b.Send(1)
	b.Close()

	if b.Send(2) {
		t.Error("Send() after Close() = true, want false")
	}

	// Remaining items still drain
	if got, ok := b.Receive(); !ok || got != 1 {
		t.Errorf("Receive() = (%d, %t), want (1, true)", got, ok)
	}
	if _, ok := b.Receive(); ok {
		t.Error("Receive() on closed empty buffer = ok, want closed signal")
	}
}

func TestBufferReceiveBlocksUntilSend(t *testing.T) {
	b := NewGrowableBuffer[int](4)

	done := make(chan int)
	go func() {
		v, _ := b.Receive()
		done <- v
	}()

	time.Sleep(20 * time.Millisecond)
	b.Send(42)

	select {
	case v := <-done:
		if v != 42 {
			t.Errorf("Receive() = %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive() did not wake after Send()")
	}
}

func TestBufferDrainTo(t *testing.T) {
	b := NewGrowableBuffer[int](8)

	for i := 0; i < 6; i++ {
		b.Send(i)
	}

	first := b.DrainTo(4)
	if len(first) != 4 {
		t.Fatalf("DrainTo(4) returned %d items, want 4", len(first))
	}
	for i, v := range first {
		if v != i {
			t.Errorf("first[%d] = %d, want %d", i, v, i)
		}
	}

	rest := b.DrainTo(0)
	if len(rest) != 2 {
		t.Fatalf("DrainTo(0) returned %d items, want 2", len(rest))
	}
	if b.Len() != 0 {
		t.Errorf("Len() after drain = %d, want 0", b.Len())
	}

	if got := b.DrainTo(0); got != nil {
		t.Errorf("DrainTo(0) on empty buffer = %v, want nil", got)
	}
}

func TestBufferConcurrentSendReceive(t *testing.T) {
	b := NewGrowableBuffer[int](16)
	const n = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			b.Send(i)
		}
		b.Close()
	}()

	seen := 0
	for {
		_, ok := b.Receive()
		if !ok {
			break
		}
		seen++
	}
	wg.Wait()

	if seen != n {
		t.Errorf("received %d items, want %d", seen, n)
	}
	stats := b.Stats()
	if stats.TotalReceived != n || stats.TotalSent != n {
		t.Errorf("Stats() = %+v, want %d in and out", stats, n)
	}
}
