package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/gitrdm/geost/pkg/fd"
	"github.com/gitrdm/geost/pkg/geost"
)

// errProblem marks a malformed problem file.
var errProblem = errors.New("invalid problem")

// problem is the TOML form of a placement problem:
//
//	dimension = 2
//	[options]
//	greedy = true
//	control_vectors = [[-1, 2, 3]]
//	[[shape]]
//	id = 1
//	boxes = [ { offset = [0,0], size = [1,2] } ]
//	[[object]]
//	id = 1
//	shape = [1]
//	coords = [[1,2],[1,1]]
//	[[constraint]]
//	kind = "non_overlapping"
//	objects = [1,2]
type problem struct {
	Name        string           `toml:"name"`
	Dimension   int              `toml:"dimension"`
	Options     optionsSpec      `toml:"options"`
	Shapes      []shapeSpec      `toml:"shape"`
	Objects     []objectSpec     `toml:"object"`
	Constraints []constraintSpec `toml:"constraint"`
	// Expect is the solution count a scenario run checks against.
	Expect *int `toml:"expect"`
}

type optionsSpec struct {
	Greedy         bool    `toml:"greedy"`
	Memoisation    *bool   `toml:"memoisation"`
	Increment      bool    `toml:"increment"`
	ControlVectors [][]int `toml:"control_vectors"`
	IncludedPairs  [][]int `toml:"included_pairs"`
}

type shapeSpec struct {
	ID    int       `toml:"id"`
	Boxes []boxSpec `toml:"boxes"`
}

type boxSpec struct {
	Offset []int `toml:"offset"`
	Size   []int `toml:"size"`
}

type objectSpec struct {
	ID     int     `toml:"id"`
	Shape  []int   `toml:"shape"`
	Coords [][]int `toml:"coords"`
	Radius int     `toml:"radius"`

	Start    []int `toml:"start"`
	Duration []int `toml:"duration"`
	End      []int `toml:"end"`
}

type constraintSpec struct {
	Kind    string `toml:"kind"`
	Dims    []int  `toml:"dims"`
	Objects []int  `toml:"objects"`

	// included
	Origin []int `toml:"origin"`
	Size   []int `toml:"size"`

	// dist_leq, dist_geq
	Q        int   `toml:"q"`
	D        int   `toml:"d"`
	Pair     []int `toml:"pair"`
	Distance []int `toml:"distance"`

	// dist_linear
	A []int `toml:"a"`
	B int   `toml:"b"`
}

// loadProblem reads and decodes a problem file.
func loadProblem(path string) (*problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := parseProblem(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = path
	}
	return p, nil
}

// parseProblem decodes TOML text. Unknown keys are rejected.
func parseProblem(text string) (*problem, error) {
	var p problem
	md, err := toml.Decode(text, &p)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys %s: %w", strings.Join(keys, ", "), errProblem)
	}
	if p.Dimension < 1 {
		return nil, fmt.Errorf("dimension %d: %w", p.Dimension, errProblem)
	}
	return &p, nil
}

// options converts the [options] table. Greedy placement without vectors
// uses the smallest shape and the lowest corner in axis order.
func (o optionsSpec) options(k int) (geost.Options, error) {
	var opts []geost.Option
	if o.Memoisation != nil {
		opts = append(opts, geost.WithMemoisation(*o.Memoisation))
	}
	opts = append(opts, geost.WithIncrement(o.Increment))
	if o.Greedy {
		vectors := make([]geost.ControlVector, len(o.ControlVectors))
		for i, cv := range o.ControlVectors {
			vectors[i] = slices.Clone(cv)
		}
		if len(vectors) == 0 {
			cv := geost.ControlVector{1}
			for d := 0; d < k; d++ {
				cv = append(cv, d+2)
			}
			vectors = append(vectors, cv)
		}
		opts = append(opts, geost.WithGreedy(vectors...))
	}
	if len(o.IncludedPairs) > 0 {
		pairs := make([]geost.ObjectPair, len(o.IncludedPairs))
		for i, p := range o.IncludedPairs {
			if len(p) != 2 {
				return geost.Options{}, fmt.Errorf("included pair %v: want two object ids: %w", p, errProblem)
			}
			pairs[i] = geost.ObjectPair{A: p[0], B: p[1]}
		}
		opts = append(opts, geost.WithIncludedPairs(pairs...))
	}
	return geost.NewOptions(opts...), nil
}

// instance is a problem posted on its own store.
type instance struct {
	store    *fd.Store
	geost    *geost.Geost
	objects  []*geost.Object
	counters *geost.Counters
	// decision lists every variable a solution assigns.
	decision []*fd.IntVar
}

// build creates a store, the problem variables and the placement
// constraint.
func (p *problem) build(logger *log.Logger) (*instance, error) {
	k := p.Dimension
	in := &instance{store: fd.NewStore(), counters: geost.NewCounters()}

	var boxes []geost.ShiftedBox
	for _, s := range p.Shapes {
		if len(s.Boxes) == 0 {
			return nil, fmt.Errorf("shape %d has no boxes: %w", s.ID, errProblem)
		}
		for _, b := range s.Boxes {
			boxes = append(boxes, geost.NewShiftedBox(s.ID, b.Offset, b.Size))
		}
	}

	for _, spec := range p.Objects {
		o, err := in.object(spec, k)
		if err != nil {
			return nil, err
		}
		in.objects = append(in.objects, o)
	}

	var ectrs []geost.ExternalConstraint
	for i, spec := range p.Constraints {
		c, err := in.constraint(i, spec)
		if err != nil {
			return nil, err
		}
		ectrs = append(ectrs, c)
	}

	opts, err := p.Options.options(k)
	if err != nil {
		return nil, err
	}
	g, err := geost.New(in.store, geost.Config{
		Dimension:   k,
		Objects:     in.objects,
		Boxes:       boxes,
		Constraints: ectrs,
		Options:     opts,
		Logger:      logger,
		Metrics:     in.counters,
	})
	if err != nil {
		return nil, err
	}
	in.geost = g
	return in, nil
}

func (in *instance) object(spec objectSpec, k int) (*geost.Object, error) {
	if len(spec.Shape) == 0 {
		return nil, fmt.Errorf("object %d has no candidate shape: %w", spec.ID, errProblem)
	}
	if len(spec.Coords) != k {
		return nil, fmt.Errorf("object %d: %d coordinate ranges for dimension %d: %w", spec.ID, len(spec.Coords), k, errProblem)
	}
	shape, err := in.store.NewEnumVar(fmt.Sprintf("s%d", spec.ID), spec.Shape)
	if err != nil {
		return nil, err
	}
	in.decision = append(in.decision, shape)

	coords := make([]*fd.IntVar, k)
	for d, r := range spec.Coords {
		v, err := in.rangeVar(fmt.Sprintf("%s%d", axisName(d), spec.ID), r)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", spec.ID, err)
		}
		coords[d] = v
	}
	o := geost.NewObject(spec.ID, shape, coords...)
	if spec.Radius > 0 {
		o.WithRadius(spec.Radius)
	}

	timed := spec.Start != nil || spec.Duration != nil || spec.End != nil
	if timed {
		var tv [3]*fd.IntVar
		for i, r := range [][]int{spec.Start, spec.Duration, spec.End} {
			v, err := in.rangeVar(fmt.Sprintf("%s%d", [3]string{"start", "dur", "end"}[i], spec.ID), r)
			if err != nil {
				return nil, fmt.Errorf("object %d time: %w", spec.ID, err)
			}
			tv[i] = v
		}
		o.WithTime(tv[0], tv[1], tv[2])
	}
	return o, nil
}

func (in *instance) constraint(i int, spec constraintSpec) (geost.ExternalConstraint, error) {
	switch spec.Kind {
	case "non_overlapping":
		return geost.NewNonOverlapping(spec.Dims, spec.Objects...), nil
	case "included":
		return geost.NewIncluded(spec.Dims, spec.Origin, spec.Size, spec.Objects...), nil
	case "visible":
		return geost.NewVisible(spec.Dims, spec.Objects...), nil
	case "dist_leq", "dist_geq":
		if len(spec.Pair) != 2 {
			return nil, fmt.Errorf("constraint %d: %s needs pair = [o1, o2]: %w", i, spec.Kind, errProblem)
		}
		q := spec.Q
		if q == 0 {
			q = 2
		}
		var dvar *fd.IntVar
		if spec.Distance != nil {
			v, err := in.rangeVar(fmt.Sprintf("d%d", i), spec.Distance)
			if err != nil {
				return nil, fmt.Errorf("constraint %d: %w", i, err)
			}
			dvar = v
		}
		if spec.Kind == "dist_leq" {
			return geost.NewDistLeq(q, spec.D, spec.Pair[0], spec.Pair[1], dvar), nil
		}
		return geost.NewDistGeq(q, spec.D, spec.Pair[0], spec.Pair[1], dvar), nil
	case "dist_linear":
		if len(spec.Objects) != 1 {
			return nil, fmt.Errorf("constraint %d: dist_linear takes one object: %w", i, errProblem)
		}
		return geost.NewDistLinear(spec.A, spec.B, spec.Objects[0]), nil
	default:
		return nil, fmt.Errorf("constraint %d: unknown kind %q: %w", i, spec.Kind, errProblem)
	}
}

// rangeVar creates a bounded decision variable from [lo, hi].
func (in *instance) rangeVar(name string, r []int) (*fd.IntVar, error) {
	if len(r) != 2 {
		return nil, fmt.Errorf("%s: range %v: want [lo, hi]: %w", name, r, errProblem)
	}
	v, err := in.store.NewIntVar(name, r[0], r[1])
	if err != nil {
		return nil, err
	}
	in.decision = append(in.decision, v)
	return v, nil
}

func axisName(d int) string {
	if d < 3 {
		return string("xyz"[d])
	}
	return fmt.Sprintf("x%d_", d)
}
