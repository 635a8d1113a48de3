package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls   int32
	running int32
	overlap int32
	err     error
}

func (l *countingLoader) Load(ctx context.Context) (service.Report, error) {
	if atomic.AddInt32(&l.running, 1) > 1 {
		atomic.StoreInt32(&l.overlap, 1)
	}
	defer atomic.AddInt32(&l.running, -1)

	n := atomic.AddInt32(&l.calls, 1)
	time.Sleep(5 * time.Millisecond)
	return service.Report{LoadedUsers: []string{fmt.Sprintf("run-%d", n)}}, l.err
}

func TestCorpusWorker_LoadNowSerialises(t *testing.T) {
	loader := &countingLoader{}
	w := NewCorpusWorker(loader, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.LoadNow(context.Background(), "test")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), atomic.LoadInt32(&loader.calls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&loader.overlap))

	report, ok := w.LastReport()
	require.True(t, ok)
	assert.Len(t, report.LoadedUsers, 1)
}

func TestCorpusWorker_TriggerCoalesces(t *testing.T) {
	w := NewCorpusWorker(&countingLoader{}, time.Hour)

	assert.True(t, w.Trigger("first"))
	assert.False(t, w.Trigger("second"))
}

func TestCorpusWorker_Run(t *testing.T) {
	loader := &countingLoader{}
	w := NewCorpusWorker(loader, time.Hour)

	_, ok := w.LastReport()
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&loader.calls) == 1 }, time.Second, 5*time.Millisecond)

	w.Trigger("manual")
	require.Eventually(t, func() bool { return atomic.LoadInt32(&loader.calls) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestCorpusWorker_RunSurvivesLoadErrors(t *testing.T) {
	loader := &countingLoader{err: fmt.Errorf("index unavailable")}
	w := NewCorpusWorker(loader, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&loader.calls) >= 3 }, time.Second, 5*time.Millisecond)
}
