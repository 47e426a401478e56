package capability

import (
	"testing"

	"github.com/smartcgms-go/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFilter struct {
	executed int
}

func (s *stubFilter) Execute(ev *event.Event) error {
	s.executed++
	ev.Release()
	return nil
}

func TestErrorListAccumulates(t *testing.T) {
	var errs ErrorList
	assert.True(t, errs.Empty())
	errs.Add("cannot-resolve-filter-descriptor: {...}")
	errs.Add("failed-to-configure-filter: sink")
	assert.False(t, errs.Empty())
	assert.Equal(t, []string{
		"cannot-resolve-filter-descriptor: {...}",
		"failed-to-configure-filter: sink",
	}, errs.Entries())
}

func TestFeedbackSenderSinkBindsOnce(t *testing.T) {
	var bound Filter
	sender := &FeedbackSender{
		TargetName: "L1",
		Sink: func(receiver Filter) {
			bound = receiver
		},
	}
	receiver := &stubFilter{}
	sender.Sink(receiver)
	assert.Same(t, receiver, bound)
}

func TestCapabilitiesExecuteViaFilterInterface(t *testing.T) {
	f := &stubFilter{}
	caps := Capabilities{
		FeedbackReceiver: &FeedbackReceiver{Name: "L1"},
	}
	assert.Equal(t, "L1", caps.FeedbackReceiver.Name)

	ev, err := event.Allocate(event.CodeLevel)
	require.NoError(t, err)
	require.NoError(t, f.Execute(ev))
	assert.Equal(t, 1, f.executed)
}
