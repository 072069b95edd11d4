package eventbus

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/blockverse-mods/internal/logging"
)

type blockEdit struct {
	Op      string `json:"op"`
	Changed int    `json:"changed"`
}

func TestMemoryBusDeliversMatchingEvents(t *testing.T) {
	bus := NewMemoryBus(16)
	ctx := context.Background()

	var mu sync.Mutex
	var got []string
	_, err := bus.Subscribe(ctx, Filter{Types: []string{"BlockEdit"}}, func(ctx context.Context, ev *Envelope) {
		var p blockEdit
		assert.NoError(t, ev.Decode(&p))
		mu.Lock()
		got = append(got, p.Op)
		mu.Unlock()
	})
	require.NoError(t, err)

	edit, err := NewEnvelope("worldedit", "BlockEdit", blockEdit{Op: "fill", Changed: 8})
	require.NoError(t, err)
	other, err := NewEnvelope("host", "PlayerJoin", map[string]string{"name": "Steve"})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, edit))
	require.NoError(t, bus.Publish(ctx, other))
	require.NoError(t, bus.Close())

	assert.Equal(t, []string{"fill"}, got)
	stats := bus.Metrics()
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(1), stats.Consumed)

	assert.ErrorIs(t, bus.Publish(ctx, edit), ErrClosed)
	assert.NoError(t, bus.Close(), "повторное закрытие допустимо")
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	ctx := context.Background()

	calls := 0
	var mu sync.Mutex
	sub, err := bus.Subscribe(ctx, Filter{}, func(context.Context, *Envelope) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, _ := NewEnvelope("test", "X", nil)
	require.NoError(t, bus.Publish(ctx, ev))
	require.NoError(t, bus.Close())
	assert.Zero(t, calls)
}

func TestMemoryBusCloseDeliversEveryPublished(t *testing.T) {
	for round := 0; round < 20; round++ {
		bus := NewMemoryBus(4)
		var delivered atomic.Int64
		_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {
			delivered.Add(1)
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					ev, _ := NewEnvelope("test", "BlockEdit", blockEdit{Op: "fill"})
					ev.Priority = 7
					if err := bus.Publish(context.Background(), ev); err != nil {
						assert.ErrorIs(t, err, ErrClosed)
						return
					}
				}
			}()
		}

		time.Sleep(time.Millisecond)
		require.NoError(t, bus.Close())
		stats := bus.Metrics()
		assert.Equal(t, int64(stats.Published), delivered.Load(), "раунд %d: принятое событие потеряно при Close", round)
		wg.Wait()
		assert.Equal(t, stats.Published, bus.Metrics().Published, "после Close публикаций нет")
	}
}

func TestMatchFilterSources(t *testing.T) {
	ev := &Envelope{EventType: "BlockEdit", Source: "rest"}
	assert.True(t, matchFilter(ev, Filter{}))
	assert.True(t, matchFilter(ev, Filter{Sources: []string{"lua", "rest"}}))
	assert.False(t, matchFilter(ev, Filter{Sources: []string{"lua"}}))
	assert.False(t, matchFilter(ev, Filter{Types: []string{"PlayerJoin"}}))
}

func TestMetricsExporterCollect(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := NewMemoryBus(8)
	exp := NewMetricsExporter(bus, reg)

	ev, _ := NewEnvelope("test", "X", nil)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())

	exp.Collect()
	exp.Collect() // повторный сбор не удваивает счётчики
	assert.Equal(t, 2.0, testutil.ToFloat64(exp.published))

	exp.Stop() // не запущен: ничего не делает
}

func TestGlobalPublish(t *testing.T) {
	Init(nil)
	ev, _ := NewEnvelope("test", "X", nil)
	assert.NoError(t, Publish(context.Background(), ev), "без шины публикация игнорируется")

	bus := NewMemoryBus(4)
	Init(bus)
	defer Init(nil)
	require.NoError(t, Publish(context.Background(), ev))
	require.NoError(t, bus.Close())
	assert.Equal(t, uint64(1), bus.Metrics().Published)
}

func TestLoggingListener(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := logging.NewWriterLogger("bus", &lockedWriter{w: &buf, mu: &mu}, logging.DEBUG)

	bus := NewMemoryBus(4)
	_, err := StartLoggingListener(context.Background(), bus, logger)
	require.NoError(t, err)

	ev, _ := NewEnvelope("worldedit", "BlockEdit", blockEdit{Op: "hollow"})
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, buf.String(), "BlockEdit src=worldedit")
}

func TestNewEnvelopeFields(t *testing.T) {
	before := time.Now().UTC()
	ev, err := NewEnvelope("src", "T", blockEdit{Op: "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, 1, ev.Version)
	assert.False(t, ev.Timestamp.Before(before))
	assert.JSONEq(t, `{"op":"x","changed":0}`, string(ev.Payload))

	_, err = NewEnvelope("src", "T", make(chan int))
	assert.Error(t, err)
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
