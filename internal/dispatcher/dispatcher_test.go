package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects log lines as "LEVEL: msg".
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) add(level, msg string, kv []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf("%s: %s %v", level, msg, kv))
}

func (r *recorder) Debug(msg string, kv ...any) { r.add("DEBUG", msg, kv) }
func (r *recorder) Info(msg string, kv ...any)  { r.add("INFO", msg, kv) }
func (r *recorder) Error(msg string, kv ...any) { r.add("ERROR", msg, kv) }

func (r *recorder) has(prefix string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func newDispatcher(t *testing.T) (*Dispatcher, *recorder) {
	t.Helper()
	log := &recorder{}
	d, err := New(log)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d, log
}

func TestDispatch_Sync(t *testing.T) {
	d, _ := newDispatcher(t)

	var got Event
	d.Register(CommandGameCompleted, func(e Event) (any, error) {
		got = e
		return e.Index * 2, nil
	})

	res, err := d.Dispatch(Event{Command: CommandGameCompleted, BatchID: "b1", Index: 3})
	require.NoError(t, err)
	assert.Equal(t, 6, res)
	assert.Equal(t, "b1", got.BatchID)
	assert.False(t, got.Timestamp.IsZero(), "timestamp stamped")
}

func TestDispatch_KeepsTimestamp(t *testing.T) {
	d, _ := newDispatcher(t)
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	var got time.Time
	d.Register(CommandBatchStart, func(e Event) (any, error) {
		got = e.Timestamp
		return nil, nil
	})
	_, err := d.Dispatch(Event{Command: CommandBatchStart, Timestamp: at})
	require.NoError(t, err)
	assert.Equal(t, at, got)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d, _ := newDispatcher(t)
	_, err := d.Dispatch(Event{Command: ":GAME:REPLAYED:"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegister_Replaces(t *testing.T) {
	d, _ := newDispatcher(t)
	d.Register(CommandBatchEnd, func(Event) (any, error) { return "first", nil })
	d.Register(CommandBatchEnd, func(Event) (any, error) { return "second", nil })

	res, err := d.Dispatch(Event{Command: CommandBatchEnd})
	require.NoError(t, err)
	assert.Equal(t, "second", res)
}

func TestHasHandler(t *testing.T) {
	d, _ := newDispatcher(t)
	d.Register(CommandGameFailed, func(Event) (any, error) { return nil, nil })

	assert.True(t, d.HasHandler(CommandGameFailed))
	assert.False(t, d.HasHandler(CommandGameCompleted))
}

func TestBuffered_HandlesAsync(t *testing.T) {
	d, _ := newDispatcher(t)

	var handled atomic.Int32
	d.Register(CommandGameCompleted, func(Event) (any, error) {
		handled.Add(1)
		return nil, nil
	}, Buffered(16))

	for i := range 5 {
		res, err := d.Dispatch(Event{Command: CommandGameCompleted, Index: i})
		require.NoError(t, err)
		assert.Equal(t, Queued, res)
	}
	d.Drain(CommandGameCompleted)
	assert.Equal(t, int32(5), handled.Load())
}

func TestBuffered_RejectsWhenFull(t *testing.T) {
	d, _ := newDispatcher(t)

	release := make(chan struct{})
	d.Register(CommandGameCompleted, func(Event) (any, error) {
		<-release
		return nil, nil
	}, Buffered(2))

	// One in the handler at most, two in the queue.
	var err error
	for range 4 {
		if _, err = d.Dispatch(Event{Command: CommandGameCompleted}); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrQueueFull)
	close(release)
}

func TestBuffered_Blocking(t *testing.T) {
	d, _ := newDispatcher(t)

	release := make(chan struct{})
	d.Register(CommandGameCompleted, func(Event) (any, error) {
		<-release
		return nil, nil
	}, Buffered(1), Blocking())

	done := make(chan struct{})
	go func() {
		for range 3 {
			_, _ = d.Dispatch(Event{Command: CommandGameCompleted})
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("dispatch should block while the lane is full")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch still blocked after the handler resumed")
	}
}

func TestLogged(t *testing.T) {
	d, log := newDispatcher(t)

	d.Register(CommandBatchStart, func(Event) (any, error) { return "ok", nil }, Logged())
	d.Register(CommandBatchEnd, func(Event) (any, error) { return nil, errors.New("sink down") }, Logged())

	_, err := d.Dispatch(Event{Command: CommandBatchStart, BatchID: "b1"})
	require.NoError(t, err)
	_, err = d.Dispatch(Event{Command: CommandBatchEnd, BatchID: "b1"})
	require.Error(t, err)

	assert.True(t, log.has("DEBUG: handling event"))
	assert.True(t, log.has("DEBUG: event handled"))
	assert.True(t, log.has("ERROR: event failed"))
}

func TestLogged_Buffered(t *testing.T) {
	d, log := newDispatcher(t)

	d.Register(CommandGameCompleted, func(Event) (any, error) { return "done", nil }, Buffered(8), Logged())

	res, err := d.Dispatch(Event{Command: CommandGameCompleted})
	require.NoError(t, err)
	assert.Equal(t, Queued, res)
	d.Drain(CommandGameCompleted)
	assert.True(t, log.has("DEBUG: event handled"))
}

func TestClose_DrainsLanes(t *testing.T) {
	log := &recorder{}
	d, err := New(log)
	require.NoError(t, err)

	var handled atomic.Int32
	d.Register(CommandGameCompleted, func(e Event) (any, error) {
		time.Sleep(time.Millisecond)
		handled.Add(1)
		if e.Index == 4 {
			return nil, fmt.Errorf("sink rejected game %d", e.Index)
		}
		return nil, nil
	}, Buffered(10), Blocking())

	for i := range 5 {
		_, err := d.Dispatch(Event{Command: CommandGameCompleted, Index: i})
		require.NoError(t, err)
	}

	d.Close()
	d.Close()

	assert.Equal(t, int32(5), handled.Load())
	assert.True(t, log.has("ERROR: buffered event failed"))

	_, err = d.Dispatch(Event{Command: CommandGameCompleted})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDrain(t *testing.T) {
	d, _ := newDispatcher(t)

	var handled atomic.Int32
	d.Register(CommandGameCompleted, func(Event) (any, error) {
		time.Sleep(2 * time.Millisecond)
		handled.Add(1)
		return nil, nil
	}, Buffered(100))
	d.Register(CommandBatchEnd, func(Event) (any, error) { return nil, nil })

	for i := range 20 {
		_, err := d.Dispatch(Event{Command: CommandGameCompleted, Index: i})
		require.NoError(t, err)
	}

	d.Drain(CommandGameCompleted, CommandBatchEnd, ":UNKNOWN:")
	assert.Equal(t, int32(20), handled.Load())
}
