// Package device provides an in-process compute backend with an in-order
// command queue, device-resident buffers and asynchronous host readback.
// Commands submitted to a queue execute in program order, so a copy enqueued
// after a dispatch always observes the dispatch's completed output.
package device

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

var (
	// ErrClosed reports a command submitted to a closed device.
	ErrClosed = errors.New("device: closed")
	// ErrReadbackTimeout reports a host readback that did not complete
	// within the caller's wait bound. The readback remains collectable.
	ErrReadbackTimeout = errors.New("device: readback timeout")
)

// Buffer is a fixed-size device-resident byte buffer.
type Buffer struct {
	label string
	data  []byte
}

// Label returns the debug label assigned at creation.
func (b *Buffer) Label() string { return b.label }

// Size returns the buffer length in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// Bytes exposes the backing storage. Outside a submitted command the
// contents are only stable between a queue drain and the next submission.
func (b *Buffer) Bytes() []byte { return b.data }

// Device owns a single in-order command queue serviced by one goroutine.
// Dispatch commands fan work out over a fixed pool of workers and join
// before the next command runs, so per-command internal parallelism never
// reorders the queue.
type Device struct {
	workers int

	mu     sync.Mutex
	queue  chan func()
	closed bool
	done   chan struct{}
}

// New constructs a device with the given worker count. A zero count selects
// GOMAXPROCS; a negative count is a configuration error.
func New(workers int) (*Device, error) {
	if workers < 0 {
		return nil, fmt.Errorf("device: invalid worker count %d", workers)
	}
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	d := &Device{
		workers: workers,
		queue:   make(chan func(), 32),
		done:    make(chan struct{}),
	}
	go d.run()
	return d, nil
}

func (d *Device) run() {
	defer close(d.done)
	for cmd := range d.queue {
		cmd()
	}
}

// Workers returns the size of the dispatch worker pool.
func (d *Device) Workers() int { return d.workers }

// CreateBuffer allocates a zeroed device buffer of the given byte size.
func (d *Device) CreateBuffer(label string, size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("device: invalid buffer size %d for %q", size, label)
	}
	return &Buffer{label: label, data: make([]byte, size)}, nil
}

// Submit enqueues a command for in-order execution.
func (d *Device) Submit(cmd func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.queue <- cmd
	return nil
}

// Dispatch enqueues a command that invokes fn once per tile, fanning the
// tilesX*tilesY grid of tiles across the worker pool and joining before the
// command completes. Tiles share no write targets, so no locking is done on
// their behalf.
func (d *Device) Dispatch(tilesX, tilesY int, fn func(tileX, tileY int)) error {
	if tilesX <= 0 || tilesY <= 0 {
		return fmt.Errorf("device: invalid dispatch grid %dx%d", tilesX, tilesY)
	}
	return d.Submit(func() {
		total := tilesX * tilesY
		chunk := (total + d.workers - 1) / d.workers
		var wg sync.WaitGroup
		for w := 0; w < d.workers; w++ {
			start := w * chunk
			end := start + chunk
			if end > total {
				end = total
			}
			if start >= end {
				continue
			}
			wg.Add(1)
			go func(i0, i1 int) {
				defer wg.Done()
				for i := i0; i < i1; i++ {
					fn(i%tilesX, i/tilesX)
				}
			}(start, end)
		}
		wg.Wait()
	})
}

// CopyBuffer enqueues a device-to-device copy from src to dst.
func (d *Device) CopyBuffer(src, dst *Buffer) error {
	if src == nil || dst == nil {
		return errors.New("device: nil buffer in copy")
	}
	if src.Size() != dst.Size() {
		return fmt.Errorf("device: copy size mismatch %d -> %d", src.Size(), dst.Size())
	}
	return d.Submit(func() {
		copy(dst.data, src.data)
	})
}

// Readback is a pending asynchronous device-to-host transfer.
type Readback struct {
	done chan struct{}
	data []byte
}

// Await blocks until the transfer completes or the timeout expires. On
// timeout it returns ErrReadbackTimeout; the transfer stays pending and
// Await may be called again without re-enqueueing anything.
func (r *Readback) Await(timeout time.Duration) ([]byte, error) {
	select {
	case <-r.done:
		return r.data, nil
	case <-time.After(timeout):
		return nil, ErrReadbackTimeout
	}
}

// ReadAsync enqueues a host readback of src. The returned Readback resolves
// once every previously submitted command has executed and the snapshot is
// host-visible.
func (d *Device) ReadAsync(src *Buffer) (*Readback, error) {
	if src == nil {
		return nil, errors.New("device: nil buffer in readback")
	}
	r := &Readback{done: make(chan struct{}), data: make([]byte, src.Size())}
	err := d.Submit(func() {
		copy(r.data, src.data)
		close(r.done)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Sync blocks until all previously submitted commands have executed.
func (d *Device) Sync() error {
	fence := make(chan struct{})
	if err := d.Submit(func() { close(fence) }); err != nil {
		return err
	}
	<-fence
	return nil
}

// Close drains the queue and stops the device. Further submissions fail
// with ErrClosed.
func (d *Device) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	<-d.done
}
