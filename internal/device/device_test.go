package device

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSubmitOrdering(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 16; i++ {
		i := i
		if err := d.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if err := d.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("command %d executed at position %d", got, i)
		}
	}
}

func TestDispatchCoversAllTiles(t *testing.T) {
	d, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	const tx, ty = 5, 7
	var mu sync.Mutex
	seen := map[[2]int]int{}
	if err := d.Dispatch(tx, ty, func(x, y int) {
		mu.Lock()
		seen[[2]int{x, y}]++
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := d.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(seen) != tx*ty {
		t.Fatalf("dispatch covered %d tiles, expected %d", len(seen), tx*ty)
	}
	for tile, n := range seen {
		if n != 1 {
			t.Fatalf("tile %v visited %d times", tile, n)
		}
	}
}

func TestCopyAfterDispatchSeesOutput(t *testing.T) {
	d, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	src, err := d.CreateBuffer("src", 64)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	dst, err := d.CreateBuffer("dst", 64)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	if err := d.Dispatch(8, 1, func(x, _ int) {
		for i := 0; i < 8; i++ {
			src.Bytes()[x*8+i] = byte(x)
		}
	}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := d.CopyBuffer(src, dst); err != nil {
		t.Fatalf("CopyBuffer: %v", err)
	}
	rb, err := d.ReadAsync(dst)
	if err != nil {
		t.Fatalf("ReadAsync: %v", err)
	}
	data, err := rb.Await(time.Second)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	for x := 0; x < 8; x++ {
		for i := 0; i < 8; i++ {
			if data[x*8+i] != byte(x) {
				t.Fatalf("byte (%d,%d) = %d, expected %d", x, i, data[x*8+i], x)
			}
		}
	}
}

func TestReadbackTimeoutIsRetryable(t *testing.T) {
	d, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	buf, err := d.CreateBuffer("diag", 8)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	copy(buf.Bytes(), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	// Stall the queue so the readback cannot complete before the first Await.
	release := make(chan struct{})
	if err := d.Submit(func() { <-release }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	rb, err := d.ReadAsync(buf)
	if err != nil {
		t.Fatalf("ReadAsync: %v", err)
	}

	if _, err := rb.Await(20 * time.Millisecond); !errors.Is(err, ErrReadbackTimeout) {
		t.Fatalf("Await while stalled = %v, expected ErrReadbackTimeout", err)
	}

	close(release)
	data, err := rb.Await(time.Second)
	if err != nil {
		t.Fatalf("retried Await: %v", err)
	}
	if data[0] != 1 || data[7] != 8 {
		t.Fatalf("retried readback returned %v", data)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	if _, err := New(-1); err == nil {
		t.Fatal("New(-1) must fail")
	}
	d, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()
	if _, err := d.CreateBuffer("empty", 0); err == nil {
		t.Fatal("CreateBuffer(0) must fail")
	}
	if err := d.Dispatch(0, 1, func(int, int) {}); err == nil {
		t.Fatal("Dispatch with zero tiles must fail")
	}
}

func TestClosedDeviceRejectsWork(t *testing.T) {
	d, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.Close()
	if err := d.Submit(func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Submit after Close = %v, expected ErrClosed", err)
	}
}
