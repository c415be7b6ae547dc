// Package registry owns the registered test tree of one suite instance.
// The tree is built lazily by a single registration pass over a discovery
// driver's declarations; after that pass the registry is locked and every
// read path operates on immutable state.
package registry

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/testforge/spectree/discovery"
	"github.com/testforge/spectree/types"
)

type phase int

const (
	phaseRegistering phase = iota
	phaseReady
	phaseFailed
)

// Leaf is a registered test together with its resolved effective tag set.
type Leaf struct {
	types.TestLeaf
	Tags    map[string]bool // explicit tags unioned with suite-level auto-tags
	Ignored bool            // true when the effective tag set contains the ignore tag
}

// TreeNode is a scope in the registered tree. The root node has an empty
// name and does not contribute to full test names.
type TreeNode struct {
	Name     string
	Children []TreeEntry
}

// TreeEntry is one child of a scope: exactly one of Scope or Leaf is set.
type TreeEntry struct {
	Scope *TreeNode
	Leaf  *Leaf
}

// Config contains registry configuration
type Config struct {
	Log       log.Logger
	SuiteName string           // display name of the suite
	Driver    discovery.Driver // declaration source; may be nil when using direct registration only
	AutoTags  []string         // suite-level tags applied to every leaf
}

// Registry manages the test tree of a single suite instance. The lazy
// registration pass is the only critical section; it is performed at most
// once even under concurrent callers, and a failed pass leaves the
// instance unusable rather than partially registered.
type Registry struct {
	config Config

	mu      sync.RWMutex
	phase   phase
	passErr error // sticky error from a failed registration pass

	pending []discovery.Decl // direct registrations, appended after driver declarations

	root   *TreeNode
	leaves map[string]*Leaf
	order  []string // full test names in pre-order sibling-registration order
}

// NewRegistry creates a new registry instance. The registration pass does
// not run here; it is triggered by the first call that needs the finished
// tree.
func NewRegistry(cfg Config) *Registry {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Registry{config: cfg}
}

// RegisterTest registers a top-level leaf test directly, without going
// through a discovery driver. It fails with RegistrationClosedError once
// the suite is locked.
func (r *Registry) RegisterTest(name string, fn types.TestFunc, tags ...string) error {
	return r.registerDecl(discovery.Decl{
		Kind: discovery.KindLeaf,
		Name: name,
		Fn:   fn,
		Tags: tags,
	})
}

// RegisterScope registers a top-level scope whose children come from the
// given driver. It fails with RegistrationClosedError once the suite is
// locked.
func (r *Registry) RegisterScope(name string, children discovery.Driver) error {
	return r.registerDecl(discovery.Decl{
		Kind:     discovery.KindScope,
		Name:     name,
		Children: children,
	})
}

func (r *Registry) registerDecl(decl discovery.Decl) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.phase {
	case phaseReady:
		return &types.RegistrationClosedError{Name: decl.Name}
	case phaseFailed:
		return r.passErr
	}
	r.pending = append(r.pending, decl)
	return nil
}

// EnsureRegistered performs the registration pass exactly once. Concurrent
// callers block until the first caller's pass completes; a pass failure is
// sticky and is returned to every subsequent caller without retrying.
func (r *Registry) EnsureRegistered() error {
	r.mu.RLock()
	if r.phase != phaseRegistering {
		err := r.passErr
		r.mu.RUnlock()
		return err
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != phaseRegistering {
		return r.passErr
	}

	root := &TreeNode{}
	leaves := make(map[string]*Leaf)
	var order []string

	build := func(driver discovery.Driver, into *TreeNode, path []string) error {
		return r.buildScope(driver, into, path, leaves, &order)
	}

	if r.config.Driver != nil {
		if err := build(r.config.Driver, root, nil); err != nil {
			r.phase = phaseFailed
			r.passErr = err
			return err
		}
	}
	if len(r.pending) > 0 {
		if err := build(discovery.Decls(r.pending...), root, nil); err != nil {
			r.phase = phaseFailed
			r.passErr = err
			return err
		}
	}

	r.root = root
	r.leaves = leaves
	r.order = order
	r.pending = nil
	r.phase = phaseReady

	r.config.Log.Debug("Suite registered", "suite", r.config.SuiteName, "tests", len(order))
	return nil
}

// buildScope walks one driver's declarations depth-first, pre-order,
// preserving the yielded sibling order verbatim.
func (r *Registry) buildScope(driver discovery.Driver, into *TreeNode, path []string, leaves map[string]*Leaf, order *[]string) error {
	decls, err := driver.Declarations()
	if err != nil {
		return err
	}

	for _, decl := range decls {
		switch decl.Kind {
		case discovery.KindScope:
			child := &TreeNode{Name: decl.Name}
			into.Children = append(into.Children, TreeEntry{Scope: child})
			if decl.Children == nil {
				continue
			}
			if err := r.buildScope(decl.Children, child, append(path, decl.Name), leaves, order); err != nil {
				return err
			}
		case discovery.KindLeaf:
			fullName := strings.Join(append(append([]string{}, path...), decl.Name), " ")
			if _, exists := leaves[fullName]; exists {
				return &types.DuplicateTestNameError{Name: fullName}
			}
			leaf := &Leaf{
				TestLeaf: types.TestLeaf{
					Name:         fullName,
					Fn:           decl.Fn,
					ExplicitTags: types.TagSet(decl.Tags...),
					Location:     decl.Location,
				},
				Tags: r.resolveTags(decl.Tags),
			}
			leaf.Ignored = leaf.Tags[types.TagIgnore]
			into.Children = append(into.Children, TreeEntry{Leaf: leaf})
			leaves[fullName] = leaf
			*order = append(*order, fullName)
		}
	}
	return nil
}

// resolveTags merges a leaf's explicit tags with the suite-level
// auto-tags into one effective set.
func (r *Registry) resolveTags(explicit []string) map[string]bool {
	tags := make(map[string]bool, len(explicit)+len(r.config.AutoTags))
	for _, tag := range explicit {
		tags[tag] = true
	}
	for _, tag := range r.config.AutoTags {
		tags[tag] = true
	}
	return tags
}

// TestNames returns all full test names in registration order.
func (r *Registry) TestNames() ([]string, error) {
	if err := r.EnsureRegistered(); err != nil {
		return nil, err
	}
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names, nil
}

// TagsFor returns the effective tag set of one test.
func (r *Registry) TagsFor(testName string) (map[string]bool, error) {
	if err := r.EnsureRegistered(); err != nil {
		return nil, err
	}
	leaf, ok := r.leaves[testName]
	if !ok {
		return nil, &types.UnknownTestNameError{Name: testName}
	}
	return copyTags(leaf.Tags), nil
}

// AllTags returns the effective tag sets of every test that has at least
// one tag. Untagged tests are omitted from the map.
func (r *Registry) AllTags() (map[string]map[string]bool, error) {
	if err := r.EnsureRegistered(); err != nil {
		return nil, err
	}
	all := make(map[string]map[string]bool)
	for name, leaf := range r.leaves {
		if len(leaf.Tags) == 0 {
			continue
		}
		all[name] = copyTags(leaf.Tags)
	}
	return all, nil
}

// Leaf returns the registered leaf for a full test name.
func (r *Registry) Leaf(testName string) (*Leaf, error) {
	if err := r.EnsureRegistered(); err != nil {
		return nil, err
	}
	leaf, ok := r.leaves[testName]
	if !ok {
		return nil, &types.UnknownTestNameError{Name: testName}
	}
	return leaf, nil
}

// Root returns the registered tree. The tree is immutable once returned;
// callers must not modify it.
func (r *Registry) Root() (*TreeNode, error) {
	if err := r.EnsureRegistered(); err != nil {
		return nil, err
	}
	return r.root, nil
}

// ExpectedTestCount returns how many tests would actually execute under
// the filter, excluding ignored tests.
func (r *Registry) ExpectedTestCount(filter types.Filter) (int, error) {
	if err := r.EnsureRegistered(); err != nil {
		return 0, err
	}
	count := 0
	for _, name := range r.order {
		leaf := r.leaves[name]
		if leaf.Ignored {
			continue
		}
		if filter.Selects(leaf.Tags) {
			count++
		}
	}
	return count, nil
}

// SuiteName returns the suite's display name.
func (r *Registry) SuiteName() string {
	return r.config.SuiteName
}

func copyTags(tags map[string]bool) map[string]bool {
	out := make(map[string]bool, len(tags))
	for tag := range tags {
		out[tag] = true
	}
	return out
}
