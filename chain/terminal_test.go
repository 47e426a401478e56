package chain

import (
	"sync"
	"testing"
	"time"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureFilter struct {
	mu   sync.Mutex
	seen []*event.Event
}

func (f *captureFilter) Execute(ev *event.Event) error {
	f.mu.Lock()
	f.seen = append(f.seen, ev)
	f.mu.Unlock()
	return nil
}

func TestTerminalForwardsCloneToCustomOutput(t *testing.T) {
	custom := &captureFilter{}
	term := NewTerminal(custom)

	ev, err := event.Allocate(event.CodeLevel)
	require.NoError(t, err)
	ev.Raw().Level = 7.5

	require.NoError(t, term.Execute(ev))

	require.Len(t, custom.seen, 1)
	assert.Equal(t, 7.5, custom.seen[0].Raw().Level)
	custom.seen[0].Release()
}

func TestTerminalWaitForShutdownUnblocksOnShutDown(t *testing.T) {
	term := NewTerminal(nil)

	done := make(chan struct{})
	go func() {
		term.WaitForShutdown()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitForShutdown returned before Shut_Down was observed")
	case <-time.After(20 * time.Millisecond):
	}

	ev, err := event.Allocate(event.CodeShut_Down)
	require.NoError(t, err)
	require.NoError(t, term.Execute(ev))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForShutdown did not unblock after Shut_Down")
	}
	assert.True(t, term.ShutdownObserved())
}

func TestCopyingTerminalCapturesNonInfoEvents(t *testing.T) {
	var log []*event.Event
	term := NewCopyingTerminal(nil, &log)

	lvl, err := event.Allocate(event.CodeLevel)
	require.NoError(t, err)
	require.NoError(t, term.Execute(lvl))

	info, err := event.Allocate(event.CodeInformation)
	require.NoError(t, err)
	require.NoError(t, term.Execute(info))

	require.Len(t, log, 1)
	assert.Equal(t, event.CodeLevel, log[0].Raw().Code)
	log[0].Release()
}

var _ capability.Filter = (*captureFilter)(nil)
