package engine

import (
	"context"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padmap/internal/pad"
)

func drainChanges(e *Engine) []Status {
	var out []Status
	for {
		select {
		case s := <-e.Changes():
			out = append(out, s)
		default:
			return out
		}
	}
}

func TestStatusSnapshot(t *testing.T) {
	r := newTestRig(t)

	s := r.eng.Status()
	assert.True(t, s.Enabled)
	assert.Equal(t, "test", s.Profile)
	assert.Empty(t, s.Layers)
	assert.False(t, s.Focus)
}

func TestStatusChangesPublish(t *testing.T) {
	r := newTestRig(t)
	drainChanges(r.eng)

	r.eng.ButtonDown(pad.ButtonLB)
	r.advance(80 * time.Millisecond)

	published := drainChanges(r.eng)
	require.NotEmpty(t, published)
	last := published[len(published)-1]
	assert.Equal(t, []string{"shift"}, last.Layers)
	assert.Contains(t, last.Held, "lb")
}

func TestUnchangedStatusNotRepublished(t *testing.T) {
	r := newTestRig(t)
	drainChanges(r.eng)

	// Idle ticks produce no status traffic.
	for i := 0; i < 20; i++ {
		r.tick()
	}
	assert.Empty(t, drainChanges(r.eng))
}

func TestEnableDisableIdempotent(t *testing.T) {
	r := newTestRig(t)

	r.eng.Enable()
	r.eng.Enable()
	assert.True(t, r.eng.Enabled())

	r.eng.Disable()
	r.eng.Disable()
	assert.False(t, r.eng.Enabled())
}

func TestDisabledEngineIgnoresInput(t *testing.T) {
	r := newTestRig(t)
	r.eng.Disable()

	r.eng.ButtonDown(pad.ButtonA)
	r.advance(time.Second)
	r.src.set(func(s *fakeSource) { s.left = pad.Vector{X: 1, Y: 0} })
	r.tick()

	assert.Empty(t, r.exec.snapshot())
	assert.Zero(t, r.exec.moveCount())
}

func TestNilCollaboratorsDefaultToNoops(t *testing.T) {
	e := New(Options{
		Source:   &fakeSource{},
		Executor: newFakeExec(),
		Logger:   golog.NewTestLogger(t),
	})
	e.SetSettings(pad.DefaultSettings())
	e.SetProfile(testProfile())
	e.Enable()

	// Nothing here may panic against the no-op collaborators.
	e.ButtonDown(pad.ButtonA)
	e.Tick()
	e.Disable()
}

func TestSettingsSwapKeepsSession(t *testing.T) {
	r := newTestRig(t)

	r.eng.ButtonDown(pad.ButtonX)
	r.advance(80 * time.Millisecond)
	require.Equal(t, 1, r.exec.count("start:drag"))

	set := testSettings()
	set.PointerSpeed = 100
	r.eng.SetSettings(set)

	// The hold survives a tuning change; only a profile swap resets.
	assert.Equal(t, 0, r.exec.count("stop:drag"))
	r.eng.ButtonUp(pad.ButtonX)
	assert.Equal(t, 1, r.exec.count("stop:drag"))
}

func TestRunTicksAtConfiguredRate(t *testing.T) {
	r := newTestRig(t)
	r.src.set(func(s *fakeSource) { s.left = pad.Vector{X: 1, Y: 0} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.eng.Run(ctx)
		close(done)
	}()

	// Let the goroutine park on the ticker before advancing.
	time.Sleep(50 * time.Millisecond)
	r.advance(100 * time.Millisecond)
	cancel()
	<-done

	assert.Greater(t, r.exec.moveCount(), 0)
}

func TestRunRetunesTickerOnSampleRateChange(t *testing.T) {
	r := newTestRig(t)
	r.src.set(func(s *fakeSource) { s.left = pad.Vector{X: 1, Y: 0} })

	slow := testSettings()
	slow.SampleRate = 1
	r.eng.SetSettings(slow)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.eng.Run(ctx)
		close(done)
	}()

	// One tick per second at the slow rate.
	time.Sleep(50 * time.Millisecond)
	r.advance(time.Second)
	time.Sleep(50 * time.Millisecond)
	before := r.exec.moveCount()
	require.Greater(t, before, 0)

	fast := testSettings()
	fast.SampleRate = 120
	r.eng.SetSettings(fast)

	// The loop notices the new interval after its next tick, then runs at
	// the fast rate: 100 ms must now yield several ticks, not zero.
	r.advance(time.Second)
	time.Sleep(50 * time.Millisecond)
	r.advance(100 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.Greater(t, r.exec.moveCount(), before+1)
}
