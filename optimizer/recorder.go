package optimizer

import (
	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chain"
	"github.com/smartcgms-go/core/guid"
)

// metricRecorder wraps a chain.FilterCreator, recording each built
// filter's Capabilities in build order — tail-to-head, matching
// chain.Build's own iteration — so calculateSingleFitness can harvest
// every ErrorInspection.LastError in execution order (head-to-tail)
// once the candidate's composite has torn down. Grounded on
// CError_Metric_Future's promise registration and its reversed
// consumption order (parameters_optimizer.cpp's On_Filter_Created /
// Get_Error_Metric), adapted here as a direct post-teardown pull since
// capability.ErrorInspection.LastError is a pull accessor rather than a
// promise.
type metricRecorder struct {
	inner chain.FilterCreator
	built []capability.Capabilities
}

func (r *metricRecorder) CreateFilter(kind guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, error) {
	f, caps, err := r.inner.CreateFilter(kind, next)
	if err != nil {
		return f, caps, err
	}
	r.built = append(r.built, caps)
	return f, caps, nil
}

// inspectors returns every ErrorInspection.LastError closure recorded,
// in head-to-tail (execution) order — the reverse of build order —
// matching spec.md §4.7's "inspection filters encountered in execution
// order correspond to objective positions ... the caller reverses them
// so highest priority first".
func (r *metricRecorder) inspectors() []func() (float64, bool) {
	out := make([]func() (float64, bool), 0, len(r.built))
	for i := len(r.built) - 1; i >= 0; i-- {
		if ei := r.built[i].ErrorInspection; ei != nil && ei.LastError != nil {
			out = append(out, ei.LastError)
		}
	}
	return out
}

var _ chain.FilterCreator = (*metricRecorder)(nil)
