package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/appdom/internal/dom"
)

// Scenario is a sequence of editing steps followed by assertions on the
// final document.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// App is the label of the app root.
	App string `yaml:"app"`

	// Steps run in order against one session.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final document.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one editing operation. Which fields apply depends on Op.
type Step struct {
	Op string `yaml:"op"`

	// As binds the node the step produced to a label.
	As string `yaml:"as,omitempty"`

	// Node is the label of the target node.
	Node string `yaml:"node,omitempty"`

	Kind     string `yaml:"kind,omitempty"`
	Name     string `yaml:"name,omitempty"`
	Parent   string `yaml:"parent,omitempty"`
	Relation string `yaml:"relation,omitempty"`
	OrderKey string `yaml:"order_key,omitempty"`

	// Key and Value are used by set_prop and set_param. A missing or null
	// value removes the entry.
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	Attributes map[string]any `yaml:"attributes,omitempty"`
	Props      map[string]any `yaml:"props,omitempty"`
	Params     map[string]any `yaml:"params,omitempty"`
	Layout     *dom.Layout    `yaml:"layout,omitempty"`

	// ExpectError is the error code the step must fail with: a dom or
	// session code such as NOT_FOUND, or a naming code such as E205.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpAdd           = "add"
	OpMove          = "move"
	OpRemove        = "remove"
	OpDuplicate     = "duplicate"
	OpRename        = "rename"
	OpSetProp       = "set_prop"
	OpSetParam      = "set_param"
	OpSetLayout     = "set_layout"
	OpSetAttributes = "set_attributes"
	OpUndo          = "undo"
	OpRedo          = "redo"
)

// Assertion checks one fact about the final document.
type Assertion struct {
	Type string `yaml:"type"`

	Node     string   `yaml:"node,omitempty"`
	Kind     string   `yaml:"kind,omitempty"`
	Relation string   `yaml:"relation,omitempty"`
	Parent   string   `yaml:"parent,omitempty"`
	Key      string   `yaml:"key,omitempty"`
	Equals   any      `yaml:"equals,omitempty"`
	Names    []string `yaml:"names,omitempty"`
	Count    *int     `yaml:"count,omitempty"`
	Hidden   bool     `yaml:"hidden,omitempty"`
}

// Assertion type constants.
const (
	AssertValid    = "valid"
	AssertCount    = "count"
	AssertName     = "name"
	AssertChildren = "children"
	AssertParent   = "parent"
	AssertAbsent   = "absent"
	AssertPresent  = "present"
	AssertProp     = "prop"
	AssertParam    = "param"
	AssertRendered = "rendered"
	AssertSeq      = "seq"
	AssertReplay   = "replay"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.App == "" {
		return fmt.Errorf("app is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks the fields each operation needs.
func validateStep(index int, st *Step) error {
	need := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("steps[%d]: %s is required for %s", index, field, st.Op)
		}
		return nil
	}

	switch st.Op {
	case OpAdd:
		if !dom.Kind(st.Kind).Valid() {
			return fmt.Errorf("steps[%d]: unknown kind %q", index, st.Kind)
		}
		if err := need("parent", st.Parent); err != nil {
			return err
		}
		return need("relation", st.Relation)
	case OpMove:
		if err := need("node", st.Node); err != nil {
			return err
		}
		if err := need("parent", st.Parent); err != nil {
			return err
		}
		return need("relation", st.Relation)
	case OpRemove, OpDuplicate, OpSetLayout, OpSetAttributes:
		return need("node", st.Node)
	case OpRename:
		if err := need("node", st.Node); err != nil {
			return err
		}
		return need("name", st.Name)
	case OpSetProp, OpSetParam:
		if err := need("node", st.Node); err != nil {
			return err
		}
		return need("key", st.Key)
	case OpUndo, OpRedo:
		return nil
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertValid, AssertReplay:
	case AssertCount, AssertSeq:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
		if a.Kind != "" && !dom.Kind(a.Kind).Valid() {
			return fmt.Errorf("assertions[%d]: unknown kind %q", index, a.Kind)
		}
	case AssertName, AssertAbsent, AssertPresent, AssertRendered:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for %s", index, a.Type)
		}
	case AssertChildren:
		if a.Node == "" || a.Relation == "" {
			return fmt.Errorf("assertions[%d]: node and relation are required for children", index)
		}
	case AssertParent:
		if a.Node == "" || a.Parent == "" {
			return fmt.Errorf("assertions[%d]: node and parent are required for parent", index)
		}
	case AssertProp, AssertParam:
		if a.Node == "" || a.Key == "" {
			return fmt.Errorf("assertions[%d]: node and key are required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
