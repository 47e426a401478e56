package chain

import (
	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/event"
)

// feedbackReceiver wraps a feedback-capable filter so every call into
// its Execute — whether arriving from ordinary head-to-tail forwarding
// or from a sender's backward injection — funnels through one FIFO
// queue, per Open Question decision 1 (see DESIGN.md): ordering at a
// receiver is "whichever arrives at the queue first is processed
// first," not "forward always wins" or "feedback always wins." A
// dedicated goroutine drains the queue and calls the wrapped filter's
// Execute one event at a time; Execute blocks for the result, so
// callers observe ordinary synchronous semantics.
type feedbackReceiver struct {
	filter capability.Filter
	reqCh  chan feedbackRequest
	done   chan struct{}
}

type feedbackRequest struct {
	ev    *event.Event
	reply chan error
}

func newFeedbackReceiver(filter capability.Filter) *feedbackReceiver {
	fr := &feedbackReceiver{
		filter: filter,
		reqCh:  make(chan feedbackRequest, 64),
		done:   make(chan struct{}),
	}
	go fr.run()
	return fr
}

func (fr *feedbackReceiver) run() {
	defer close(fr.done)
	for req := range fr.reqCh {
		req.reply <- fr.filter.Execute(req.ev)
	}
}

// Execute implements capability.Filter, queuing ev behind any request
// already waiting and blocking until the wrapped filter processes it.
func (fr *feedbackReceiver) Execute(ev *event.Event) error {
	reply := make(chan error, 1)
	fr.reqCh <- feedbackRequest{ev: ev, reply: reply}
	return <-reply
}

// Close drains and stops the receiver's worker goroutine. Safe to call
// once, during composite teardown.
func (fr *feedbackReceiver) Close() {
	close(fr.reqCh)
	<-fr.done
}
