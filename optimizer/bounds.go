package optimizer

import (
	"sort"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/resultcode"
)

// preparedTarget is one Target resolved against a configuration: its
// bound-triple parameter read out, and its slot in the flattened
// lower/initial/upper solution vectors recorded.
type preparedTarget struct {
	filterIndex int
	paramName   string
	offset      int // offset into the flattened solution vector
	count       int // n, the number of model parameters this target contributes
}

// problem is Prepare_Parameters' result: every target resolved, sorted
// ascending by filter index, and flattened into the bounds/hint vectors
// a generic solver consumes directly.
type problem struct {
	targets []preparedTarget
	lower   []float64
	initial []float64
	upper   []float64
}

// prepareParameters reads each target's lower/value/upper bound triple
// out of cfg and flattens them into one solution-shaped problem,
// grounded on CParameters_Optimizer::Prepare_Parameters
// (parameters_optimizer.cpp:330-377): each target parameter is a single
// TypeDoubleArray of size 3n storing [lower(n), values(n), upper(n)]
// concatenated — inferred from Pop_Optimizing_Configuration's pointer
// arithmetic over the triple (begin, begin+n, begin+2n), since the
// retrieved original_source/ does not carry Read_Parameters/
// Write_Parameters' own definitions (see DESIGN.md).
func prepareParameters(cfg *chainconfig.Configuration, targets []Target, errList *capability.ErrorList) (problem, error) {
	if len(targets) == 0 {
		errList.Add("parameters-to-optimize-not-found")
		return problem{}, resultcode.New(resultcode.InvalidArg, "no parameters to optimize given")
	}

	sorted := append([]Target(nil), targets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].FilterIndex < sorted[j].FilterIndex })

	var prob problem
	for _, t := range sorted {
		if t.FilterIndex < 0 || t.FilterIndex >= len(cfg.Links) {
			errList.Add("parameters-to-optimize-not-found")
			return problem{}, resultcode.New(resultcode.InvalidArg, "target filter index out of range")
		}
		link := cfg.Links[t.FilterIndex]
		param, ok := link.Parameter(t.ParamName)
		if !ok {
			errList.Add("parameters-to-optimize-not-found")
			return problem{}, resultcode.New(resultcode.InvalidArg, "target parameter not found: "+t.ParamName)
		}
		triple, err := param.GetDoubleArray()
		if err != nil {
			errList.Add("parameters-to-optimize-not-found")
			return problem{}, resultcode.New(resultcode.InvalidArg, "target parameter unresolved: "+err.Error())
		}
		if len(triple) == 0 || len(triple)%3 != 0 {
			errList.Add("parameters-to-optimize-not-found")
			return problem{}, resultcode.New(resultcode.InvalidArg, "target parameter is not a lower/value/upper triple: "+t.ParamName)
		}

		n := len(triple) / 3
		offset := len(prob.lower)
		prob.lower = append(prob.lower, triple[0:n]...)
		prob.initial = append(prob.initial, triple[n:2*n]...)
		prob.upper = append(prob.upper, triple[2*n:3*n]...)
		prob.targets = append(prob.targets, preparedTarget{
			filterIndex: t.FilterIndex,
			paramName:   t.ParamName,
			offset:      offset,
			count:       n,
		})
	}
	return prob, nil
}

// patchCandidateIntoClone overwrites each target's value slot (the
// middle third of its bound triple) in body — a bodyBegin-relative
// clone — with candidate's corresponding span, leaving the declared
// lower/upper bounds untouched (parameters_optimizer.cpp's
// Pop_Optimizing_Configuration candidate-patch overload).
func patchCandidateIntoClone(body *chainconfig.Configuration, bodyBegin int, prob problem, candidate []float64) error {
	for _, t := range prob.targets {
		rel := t.filterIndex - bodyBegin
		if rel < 0 || rel >= len(body.Links) {
			return resultcode.New(resultcode.Fail, "target filter index outside the optimized body")
		}
		param, ok := body.Links[rel].Parameter(t.paramName)
		if !ok {
			return resultcode.New(resultcode.Fail, "target parameter missing from body clone: "+t.paramName)
		}
		triple, err := param.GetDoubleArray()
		if err != nil || len(triple) != 3*t.count {
			return resultcode.New(resultcode.Fail, "target parameter triple malformed in body clone: "+t.paramName)
		}
		n := t.count
		patched := make([]float64, 3*n)
		copy(patched[0:n], triple[0:n])
		copy(patched[n:2*n], candidate[t.offset:t.offset+n])
		copy(patched[2*n:3*n], triple[2*n:3*n])
		param.SetDoubleArray(patched)
	}
	return nil
}

// writeBackParameters writes solution's values into cfg's own (not
// cloned) links, replacing only the middle third of each target's
// bound triple — the post-solve recomputation write-back of spec.md
// §4.7.
func writeBackParameters(cfg *chainconfig.Configuration, prob problem, solution []float64) error {
	for _, t := range prob.targets {
		param, ok := cfg.Links[t.filterIndex].Parameter(t.paramName)
		if !ok {
			return resultcode.New(resultcode.Fail, "target parameter missing: "+t.paramName)
		}
		triple, err := param.GetDoubleArray()
		if err != nil || len(triple) != 3*t.count {
			return resultcode.New(resultcode.Fail, "target parameter triple malformed: "+t.paramName)
		}
		n := t.count
		patched := make([]float64, 3*n)
		copy(patched[0:n], triple[0:n])
		copy(patched[n:2*n], solution[t.offset:t.offset+n])
		copy(patched[2*n:3*n], triple[2*n:3*n])
		param.SetDoubleArray(patched)
	}
	return nil
}
