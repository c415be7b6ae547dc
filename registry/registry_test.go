package registry

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testforge/spectree/discovery"
	"github.com/testforge/spectree/types"
)

func pass() error { return nil }

// stackSuite builds the canonical nested suite used across tests:
//
//	A Stack
//	  (when empty)
//	    must report size 0
//	    must complain on pop
//	  (when full)
//	    must report its capacity
//	must pop in LIFO order        [Slow]
func stackSuite() *discovery.Builder {
	b := discovery.NewBuilder()
	b.Scope("A Stack", func(s *discovery.Builder) {
		s.Scope("(when empty)", func(s *discovery.Builder) {
			s.Test("must report size 0", pass)
			s.Test("must complain on pop", pass)
		})
		s.Scope("(when full)", func(s *discovery.Builder) {
			s.Test("must report its capacity", pass)
		})
		s.Test("must pop in LIFO order", pass, "Slow")
	})
	return b
}

func TestTestNamesRegistrationOrder(t *testing.T) {
	r := NewRegistry(Config{Driver: stackSuite()})

	names, err := r.TestNames()
	require.NoError(t, err)

	// Pre-order sibling-registration order, not alphabetical.
	require.Equal(t, []string{
		"A Stack (when empty) must report size 0",
		"A Stack (when empty) must complain on pop",
		"A Stack (when full) must report its capacity",
		"A Stack must pop in LIFO order",
	}, names)
}

func TestFullNameComposition(t *testing.T) {
	b := discovery.NewBuilder()
	b.Scope("A Stack", func(s *discovery.Builder) {
		s.Scope("(when empty)", func(s *discovery.Builder) {
			s.Test("must report size 0", pass)
		})
	})
	r := NewRegistry(Config{Driver: b})

	names, err := r.TestNames()
	require.NoError(t, err)
	require.Equal(t, []string{"A Stack (when empty) must report size 0"}, names)
}

func TestRegistrationClosedAfterFirstAccess(t *testing.T) {
	r := NewRegistry(Config{Driver: stackSuite()})

	require.NoError(t, r.RegisterTest("early registration works", pass))

	_, err := r.TestNames()
	require.NoError(t, err)

	err = r.RegisterTest("too late", pass)
	require.Error(t, err)
	assert.True(t, types.IsRegistrationClosed(err))
	var closedErr *types.RegistrationClosedError
	require.ErrorAs(t, err, &closedErr)
	assert.Equal(t, "too late", closedErr.Name)

	err = r.RegisterScope("too late scope", discovery.NewBuilder())
	assert.True(t, types.IsRegistrationClosed(err))
}

func TestDirectRegistrationsAppendAfterDriver(t *testing.T) {
	r := NewRegistry(Config{Driver: stackSuite()})
	require.NoError(t, r.RegisterTest("a direct test", pass))

	names, err := r.TestNames()
	require.NoError(t, err)
	require.Equal(t, "a direct test", names[len(names)-1])
}

func TestDuplicateTestNameFailsRegistration(t *testing.T) {
	b := discovery.NewBuilder()
	b.Scope("A Stack", func(s *discovery.Builder) {
		s.Test("must report size 0", pass)
		s.Test("must report size 0", pass)
	})
	r := NewRegistry(Config{Driver: b})

	_, err := r.TestNames()
	require.Error(t, err)
	assert.True(t, types.IsDuplicateTestName(err))
	var dupErr *types.DuplicateTestNameError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "A Stack must report size 0", dupErr.Name)
}

func TestDuplicateAcrossScopesDetectedByFullName(t *testing.T) {
	// Same leaf name in different scopes resolves to different full names.
	b := discovery.NewBuilder()
	b.Scope("A", func(s *discovery.Builder) {
		s.Test("works", pass)
	})
	b.Scope("B", func(s *discovery.Builder) {
		s.Test("works", pass)
	})
	r := NewRegistry(Config{Driver: b})

	names, err := r.TestNames()
	require.NoError(t, err)
	require.Equal(t, []string{"A works", "B works"}, names)
}

type countingDriver struct {
	inner discovery.Driver
	calls atomic.Int32
}

func (d *countingDriver) Declarations() ([]discovery.Decl, error) {
	d.calls.Add(1)
	return d.inner.Declarations()
}

func TestRegistrationPassRunsExactlyOnceUnderConcurrency(t *testing.T) {
	driver := &countingDriver{inner: discovery.Decls(
		discovery.Decl{Kind: discovery.KindLeaf, Name: "only test", Fn: pass},
	)}
	r := NewRegistry(Config{Driver: driver})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names, err := r.TestNames()
			assert.NoError(t, err)
			assert.Equal(t, []string{"only test"}, names)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), driver.calls.Load())
}

type failingDriver struct {
	calls atomic.Int32
}

func (d *failingDriver) Declarations() ([]discovery.Decl, error) {
	d.calls.Add(1)
	return nil, errors.New("discovery exploded")
}

func TestFailedPassIsStickyAndNeverRetried(t *testing.T) {
	driver := &failingDriver{}
	r := NewRegistry(Config{Driver: driver})

	_, err := r.TestNames()
	require.ErrorContains(t, err, "discovery exploded")

	// Every later access gets the same error without another pass.
	_, err = r.TestNames()
	require.ErrorContains(t, err, "discovery exploded")
	_, err = r.Root()
	require.ErrorContains(t, err, "discovery exploded")
	err = r.RegisterTest("after failure", pass)
	require.ErrorContains(t, err, "discovery exploded")

	assert.Equal(t, int32(1), driver.calls.Load())
}

func TestEmptyScopeContributesNoTests(t *testing.T) {
	b := discovery.NewBuilder()
	b.Scope("an empty scope", nil)
	b.Test("a test", pass)
	r := NewRegistry(Config{Driver: b})

	names, err := r.TestNames()
	require.NoError(t, err)
	require.Equal(t, []string{"a test"}, names)

	root, err := r.Root()
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	require.NotNil(t, root.Children[0].Scope)
	assert.Empty(t, root.Children[0].Scope.Children)
}

func TestTagResolution(t *testing.T) {
	b := discovery.NewBuilder()
	b.Test("tagged", pass, "Slow", "Network")
	b.Test("untagged", pass)
	b.Ignore("skipped", pass)

	t.Run("explicit tags only", func(t *testing.T) {
		r := NewRegistry(Config{Driver: b})

		tags, err := r.TagsFor("tagged")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"Slow": true, "Network": true}, tags)

		tags, err = r.TagsFor("untagged")
		require.NoError(t, err)
		assert.Empty(t, tags)

		tags, err = r.TagsFor("skipped")
		require.NoError(t, err)
		assert.True(t, tags[types.TagIgnore])

		all, err := r.AllTags()
		require.NoError(t, err)
		assert.Contains(t, all, "tagged")
		assert.Contains(t, all, "skipped")
		assert.NotContains(t, all, "untagged")
	})

	t.Run("suite auto-tags apply to every leaf", func(t *testing.T) {
		r := NewRegistry(Config{Driver: b, AutoTags: []string{"Acceptance"}})

		tags, err := r.TagsFor("untagged")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"Acceptance": true}, tags)

		tags, err = r.TagsFor("tagged")
		require.NoError(t, err)
		assert.True(t, tags["Slow"])
		assert.True(t, tags["Acceptance"])
	})

	t.Run("suite-level ignore retroactively ignores every leaf", func(t *testing.T) {
		r := NewRegistry(Config{Driver: b, AutoTags: []string{types.TagIgnore}})

		leaf, err := r.Leaf("untagged")
		require.NoError(t, err)
		assert.True(t, leaf.Ignored)

		count, err := r.ExpectedTestCount(types.Filter{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("unknown test name", func(t *testing.T) {
		r := NewRegistry(Config{Driver: b})
		_, err := r.TagsFor("no such test")
		assert.True(t, types.IsUnknownTestName(err))
	})
}

func TestExpectedTestCount(t *testing.T) {
	b := discovery.NewBuilder()
	b.Test("slow one", pass, "Slow")
	b.Test("slow two", pass, "Slow", "Flaky")
	b.Test("fast one", pass)
	b.Ignore("slow ignored", pass, "Slow")
	r := NewRegistry(Config{Driver: b})

	tests := []struct {
		name   string
		filter types.Filter
		want   int
	}{
		{name: "no filter runs all non-ignored", filter: types.Filter{}, want: 3},
		{name: "include Slow excludes ignored", filter: types.Filter{Include: []string{"Slow"}}, want: 2},
		{name: "exclude Flaky", filter: types.Filter{Exclude: []string{"Flaky"}}, want: 2},
		{name: "include and exclude combine", filter: types.Filter{Include: []string{"Slow"}, Exclude: []string{"Flaky"}}, want: 1},
		{name: "empty non-nil include selects nothing", filter: types.Filter{Include: []string{}}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := r.ExpectedTestCount(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}
