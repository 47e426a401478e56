package optimizer

import (
	"sync"

	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/filterparam"
)

// bodyClone is one pool entry: an independent body configuration plus
// its own copy of the replay log, the unit calculateSingleFitness
// draws, patches, executes, and returns. Grounded on
// TOptimizing_Configuration (parameters_optimizer.h).
type bodyClone struct {
	body *chainconfig.Configuration
	log  replayLog
}

// pool is the thread-safe stack of spare bodyClones shared by every
// worker of one optimization run (spec.md §5: "its mutex guards only
// the free list, never execution"). Grounded on
// Pop_Optimizing_Configuration/Push_Optimizing_Pool
// (parameters_optimizer.cpp:160-230).
type pool struct {
	mu         sync.Mutex
	free       []*bodyClone
	masterBody *chainconfig.Configuration
	masterLog  replayLog
}

func newPool(masterBody *chainconfig.Configuration, masterLog replayLog) *pool {
	return &pool{masterBody: masterBody, masterLog: masterLog}
}

// acquire pops a spare clone, or on a miss deep-clones the master body
// and clones the master log (its events still share payloads by
// reference count; see replayLog.Clone).
func (p *pool) acquire() *bodyClone {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		bc := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return bc
	}
	p.mu.Unlock()
	return &bodyClone{body: cloneConfiguration(p.masterBody), log: p.masterLog.Clone()}
}

// release returns bc to the free stack for reuse by a later candidate.
func (p *pool) release(bc *bodyClone) {
	p.mu.Lock()
	p.free = append(p.free, bc)
	p.mu.Unlock()
}

// discard drops bc's replay-log references rather than returning it to
// the pool, whenever a candidate evaluation fails and leaves it in an
// unknown state (a patch or build failure, an aborted replay, or an
// objective-count mismatch).
func (p *pool) discard(bc *bodyClone) {
	bc.log.release()
}

// sliceConfiguration builds an independent Configuration holding deep
// clones of cfg.Links[begin:end] — the body slice of spec.md §4.7,
// cloned immediately so later eager variable resolution never mutates
// the caller's original configuration.
func sliceConfiguration(cfg *chainconfig.Configuration, begin, end int) *chainconfig.Configuration {
	body := &chainconfig.Configuration{Links: make([]*chainconfig.FilterConfigurationLink, 0, end-begin)}
	for i := begin; i < end; i++ {
		body.Links = append(body.Links, cfg.Links[i].Clone())
	}
	return body
}

// cloneConfiguration deep-clones every link of cfg into a fresh
// Configuration, bypassing New/Add's parent-path propagation since each
// cloned link already carries its own resolved parent path. Grounded on
// Deep_Copy_Subconfiguration (parameters_optimizer.cpp:250-280).
func cloneConfiguration(cfg *chainconfig.Configuration) *chainconfig.Configuration {
	clone := &chainconfig.Configuration{Links: make([]*chainconfig.FilterConfigurationLink, len(cfg.Links))}
	for i, link := range cfg.Links {
		clone.Links[i] = link.Clone()
	}
	return clone
}

// resolveVariablesEagerly resolves every variable-bound parameter in
// body to its current literal value and clears the variable binding (a
// deferred-file parameter already holds the file's content from parse
// time and keeps its deferred path), so every candidate drawn from the same master body sees
// identical values regardless of when it's evaluated (spec.md §4.7:
// "All variables in the body are eagerly resolved into literals at
// cloning time"). Grounded on Remove_Variables_From_Parameter
// (parameters_optimizer.cpp:283-329). A parameter that fails to
// resolve (e.g. an unset variable) is left as-is; Configure will
// surface the failure loudly when the body is actually built.
func resolveVariablesEagerly(body *chainconfig.Configuration) {
	for _, link := range body.Links {
		for _, p := range link.Parameters() {
			switch p.Type() {
			case filterparam.TypeDouble, filterparam.TypeRationalTime:
				if v, err := p.GetDouble(); err == nil {
					p.SetDouble(v)
				}
			case filterparam.TypeInt64, filterparam.TypeSubjectID:
				if v, err := p.GetInt64(); err == nil {
					p.SetInt64(v)
				}
			case filterparam.TypeBoolean:
				if v, err := p.GetBool(); err == nil {
					p.SetBool(v)
				}
			case filterparam.TypeSignalID, filterparam.TypeSignalModelID, filterparam.TypeDiscreteModelID,
				filterparam.TypeMetricID, filterparam.TypeProducedSignalID, filterparam.TypeSolverID:
				if v, err := p.GetGUID(); err == nil {
					p.SetGUID(v)
				}
			case filterparam.TypeWideString:
				if v, err := p.GetWString(true); err == nil {
					p.SetWString(v)
				}
			case filterparam.TypeDoubleArray:
				if v, err := p.GetDoubleArray(); err == nil {
					p.SetDoubleArray(v)
				}
			case filterparam.TypeInt64Array:
				if v, err := p.GetInt64Array(); err == nil {
					p.SetInt64Array(v)
				}
			}
		}
	}
}
