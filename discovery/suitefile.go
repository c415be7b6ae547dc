package discovery

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/testforge/spectree/types"
)

// LeafSpec is the declarative description of one leaf test in a suite
// file. The file stays body-agnostic: a LeafFactory turns the spec into a
// runnable body, so the same file format serves different execution
// backends.
type LeafSpec struct {
	Name    string   `yaml:"test"`
	Tags    []string `yaml:"tags,omitempty"`
	Command []string `yaml:"command,omitempty"`
}

// LeafFactory produces a test body for a leaf spec.
type LeafFactory func(spec LeafSpec) (types.TestFunc, error)

// nodeSpec is one entry of a suite file's node list: either a scope with
// nested nodes, or a leaf.
type nodeSpec struct {
	Scope string     `yaml:"scope,omitempty"`
	Nodes []nodeSpec `yaml:"nodes,omitempty"`

	Test    string   `yaml:"test,omitempty"`
	Tags    []string `yaml:"tags,omitempty"`
	Command []string `yaml:"command,omitempty"`
}

// suiteFile is the top-level suite definition document.
type suiteFile struct {
	Suite    string     `yaml:"suite"`
	Requires string     `yaml:"requires,omitempty"`
	Tags     []string   `yaml:"tags,omitempty"`
	Nodes    []nodeSpec `yaml:"nodes"`
}

// FileDriver is a Driver backed by a YAML suite-definition file.
type FileDriver struct {
	name     string
	autoTags []string
	decls    []Decl
}

// LoadSuiteFile reads and validates a YAML suite definition and binds its
// leaves to bodies via the factory. engineVersion is checked against the
// file's optional "requires" minimum version.
func LoadSuiteFile(path string, engineVersion string, factory LeafFactory) (*FileDriver, error) {
	if factory == nil {
		return nil, fmt.Errorf("leaf factory is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}

	var doc suiteFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing suite file: %w", err)
	}
	if doc.Suite == "" {
		return nil, fmt.Errorf("suite file %s: missing suite name", path)
	}

	if doc.Requires != "" {
		if !semver.IsValid(doc.Requires) {
			return nil, fmt.Errorf("suite file %s: invalid requires version %q", path, doc.Requires)
		}
		if semver.Compare(semver.MajorMinor(engineVersion), semver.MajorMinor(doc.Requires)) < 0 {
			return nil, fmt.Errorf("suite file %s requires engine %s, running %s", path, doc.Requires, engineVersion)
		}
	}

	decls, err := buildDecls(doc.Nodes, path, factory)
	if err != nil {
		return nil, err
	}

	return &FileDriver{
		name:     doc.Suite,
		autoTags: doc.Tags,
		decls:    decls,
	}, nil
}

func buildDecls(nodes []nodeSpec, path string, factory LeafFactory) ([]Decl, error) {
	decls := make([]Decl, 0, len(nodes))
	for _, node := range nodes {
		switch {
		case node.Scope != "" && node.Test != "":
			return nil, fmt.Errorf("suite file %s: node declares both scope %q and test %q", path, node.Scope, node.Test)
		case node.Scope != "":
			children, err := buildDecls(node.Nodes, path, factory)
			if err != nil {
				return nil, err
			}
			decls = append(decls, Decl{
				Kind:     KindScope,
				Name:     node.Scope,
				Children: Decls(children...),
			})
		case node.Test != "":
			fn, err := factory(LeafSpec{Name: node.Test, Tags: node.Tags, Command: node.Command})
			if err != nil {
				return nil, fmt.Errorf("suite file %s: binding test %q: %w", path, node.Test, err)
			}
			decls = append(decls, Decl{
				Kind:     KindLeaf,
				Name:     node.Test,
				Tags:     node.Tags,
				Fn:       fn,
				Location: path,
			})
		default:
			return nil, fmt.Errorf("suite file %s: node declares neither scope nor test", path)
		}
	}
	return decls, nil
}

// SuiteName returns the display name declared at the top of the file.
func (d *FileDriver) SuiteName() string {
	return d.name
}

// AutoTags returns the suite-level tags that apply to every leaf.
func (d *FileDriver) AutoTags() []string {
	return d.autoTags
}

// Declarations implements the Driver interface.
func (d *FileDriver) Declarations() ([]Decl, error) {
	return d.decls, nil
}
