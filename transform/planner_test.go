package transform

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/cloudcmds/glslx/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// counter creates run phases that modify a shared count.
type counter struct {
	n int
}

func (c *counter) inc() *Phase {
	return NewRunPhase("inc", func(*Job) error {
		c.n++
		return nil
	})
}

func (c *counter) triple() *Phase {
	return NewRunPhase("triple", func(*Job) error {
		c.n *= 3
		return nil
	})
}

func transformWith(t *testing.T, m *Manager, params JobParameters) {
	t.Helper()
	err := m.WithJobParameters(params, func() error {
		_, err := m.Transform(context.Background(), "")
		return err
	})
	require.NoError(t, err)
}

func TestPreferStaticGraph(t *testing.T) {
	c := &counter{}
	tr := NewConditional("static", func(JobParameters, *Graph) error {
		panic("setup must not run when the static graph has items")
	})
	tr.ChainDependent(c.inc())
	transformWith(t, managerWith(t, tr), Fixed[int]{})
	require.Equal(t, 1, c.n)
}

func TestGraphResetConditional(t *testing.T) {
	c := &counter{}
	tr := NewConditional("conditional", func(_ JobParameters, g *Graph) error {
		g.ChainDependent(c.inc())
		return nil
	})
	m := managerWith(t, tr)
	transformWith(t, m, Fixed[int]{})
	require.Equal(t, 1, c.n)
	c.n = 0
	transformWith(t, m, Fixed[int]{})
	require.Equal(t, 1, c.n)
}

func TestGraphResetStatic(t *testing.T) {
	c := &counter{}
	tr := NewTransformation("static")
	tr.ChainDependent(c.inc())
	m := managerWith(t, tr)
	transformWith(t, m, Fixed[int]{})
	require.Equal(t, 1, c.n)
	c.n = 0
	transformWith(t, m, Fixed[int]{})
	require.Equal(t, 1, c.n)
}

func TestConditionalDependency(t *testing.T) {
	a, b := new(int), new(int)
	c := &counter{}
	tr := NewConditional("conditional", func(params JobParameters, g *Graph) error {
		g.ChainDependent(c.inc())
		if v, _ := ValueOf[*int](params); v == a {
			g.ChainDependent(c.inc())
			g.ChainDependent(c.triple())
		} else {
			g.ChainDependent(c.triple())
			g.ChainDependent(c.inc())
		}
		return nil
	})
	m := managerWith(t, tr)
	transformWith(t, m, Fixed[*int]{Value: a})
	require.Equal(t, 6, c.n)
	c.n = 0
	transformWith(t, m, Fixed[*int]{Value: b})
	require.Equal(t, 4, c.n)
	c.n = 0
	transformWith(t, m, Fixed[*int]{Value: a})
	require.Equal(t, 6, c.n)
}

func TestConditionalNesting(t *testing.T) {
	a, b := new(int), new(int)
	setups := 0
	tr := NewConditional("outer", func(params JobParameters, g *Graph) error {
		setups++
		if v, _ := ValueOf[*int](params); v == a {
			g.ChainDependent(NewConditional("inner", func(JobParameters, *Graph) error {
				setups++
				return nil
			}))
		}
		return nil
	})
	m := managerWith(t, tr)
	_, err := m.Plan(Fixed[*int]{Value: a})
	require.NoError(t, err)
	require.Equal(t, 2, setups)

	setups = 0
	_, err = m.Plan(Fixed[*int]{Value: b})
	require.NoError(t, err)
	require.Equal(t, 1, setups)
}

func TestGraphSetupDeduplication(t *testing.T) {
	setups := 0
	shared := NewConditional("shared", func(JobParameters, *Graph) error {
		setups++
		return nil
	})
	first := NewTransformation("first")
	first.ChainDependent(shared)
	second := NewTransformation("second")
	second.ChainDependent(shared)
	m := managerWith(t, first, second)
	_, err := m.Plan(NonFixed{})
	require.NoError(t, err)
	require.Equal(t, 1, setups)
}

func TestPlanCache(t *testing.T) {
	setups := 0
	tr := NewConditional("counted", func(JobParameters, *Graph) error {
		setups++
		return nil
	})
	m := managerWith(t, tr)
	plan := func(params JobParameters) {
		_, err := m.Plan(params)
		require.NoError(t, err)
	}

	plan(Fixed[int]{Value: 1})
	plan(Fixed[int]{Value: 1})
	require.Equal(t, 1, setups)

	plan(Fixed[int]{Value: 2})
	require.Equal(t, 2, setups)

	plan(nil)
	plan(nil)
	require.Equal(t, 3, setups)

	plan(NonFixed{})
	plan(NonFixed{})
	require.Equal(t, 5, setups)

	require.NoError(t, m.Register(NewTransformation("other")))
	plan(Fixed[int]{Value: 1})
	require.Equal(t, 6, setups)
}

func TestPlanUncomparableParameters(t *testing.T) {
	setups := 0
	tr := NewConditional("counted", func(JobParameters, *Graph) error {
		setups++
		return nil
	})
	var logs bytes.Buffer
	m := New(WithLogger(zerolog.New(&logs)))
	require.NoError(t, m.AddConcurrent(tr))
	params := Fixed[any]{Value: []int{1}}
	for range 2 {
		_, err := m.Plan(params)
		require.NoError(t, err)
	}
	require.Equal(t, 2, setups)
	require.Contains(t, logs.String(), "not cached")
}

func TestSetupError(t *testing.T) {
	failure := fmt.Errorf("no graph today")
	tr := NewConditional("failing", func(JobParameters, *Graph) error {
		return failure
	})
	_, err := managerWith(t, tr).Plan(nil)
	require.ErrorIs(t, err, failure)
	require.ErrorIs(t, err, errors.ErrConfiguration)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E3003, e.Code)
	require.Contains(t, e.Message, `"failing"`)
}

func TestSetupGraphError(t *testing.T) {
	tr := NewConditional("bad", func(_ JobParameters, g *Graph) error {
		g.ChainConcurrentDependency(NewPhase("x"))
		return nil
	})
	_, err := managerWith(t, tr).Plan(nil)
	require.ErrorIs(t, err, errors.ErrConfiguration)
	require.Contains(t, err.Error(), `transformation "bad"`)
}

func TestLevels(t *testing.T) {
	r := &recorder{}
	inner := NewTransformation("inner")
	inner.ChainDependent(r.phase("b"))
	inner.ChainDependent(r.phase("c"))
	outer := NewTransformation("outer")
	outer.ChainDependent(r.phase("a"))
	outer.ChainDependent(inner)
	outer.ChainDependent(r.phase("d"))
	m := managerWith(t, outer, NewTransformation("side", r.phase("e")))
	require.Equal(t, [][]string{{"a", "e"}, {"b"}, {"c"}, {"d"}}, levelNames(t, m, nil))

	plan, err := m.Plan(nil)
	require.NoError(t, err)
	require.Len(t, plan.Phases(), 5)
	require.Equal(t, "0: a, e\n1: b\n2: c\n3: d\n", plan.String())
}

func TestEmptyTransformationsAddNoLevels(t *testing.T) {
	r := &recorder{}
	empty := NewTransformation("empty")
	tr := NewTransformation("t")
	tr.ChainDependent(r.phase("a"))
	tr.ChainDependent(empty)
	tr.ChainDependent(r.phase("b"))
	m := managerWith(t, tr)
	require.Equal(t, [][]string{{"a"}, {"b"}}, levelNames(t, m, nil))
}

func TestSharedPhaseIsPlannedOnce(t *testing.T) {
	r := &recorder{}
	shared := r.phase("shared")
	first := NewTransformation("first", shared)
	second := NewTransformation("second", shared)
	second.ChainDependency(r.phase("before"))
	m := managerWith(t, first, second)
	require.Equal(t, [][]string{{"before"}, {"shared"}}, levelNames(t, m, nil))
	runEmpty(t, m)
	require.Equal(t, []string{"before", "shared"}, r.runs)
}

func TestPhaseInit(t *testing.T) {
	inits := 0
	p := NewPhase("init").Init(func() error {
		inits++
		return nil
	})
	m := managerWith(t, NewTransformation("t", p))
	for range 3 {
		_, err := m.Plan(NonFixed{})
		require.NoError(t, err)
	}
	require.Equal(t, 1, inits)

	failure := fmt.Errorf("cannot init")
	bad := NewPhase("bad").Init(func() error { return failure })
	_, err := managerWith(t, NewTransformation("t", bad)).Plan(nil)
	require.ErrorIs(t, err, failure)
	require.ErrorIs(t, err, errors.ErrConfiguration)
}
