package harness

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/loader"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// Scenario defines a conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Cases are run in order.
	Cases []Case `yaml:"cases"`

	// Path is the file the scenario was loaded from, empty for scenarios
	// built in code.
	Path string `yaml:"-"`
}

// Case is one input and its expected output per dialect.
type Case struct {
	Name string `yaml:"name"`

	// Statement holds inline IR: one statement, a list, or a document
	// object with "statements".
	Statement yaml.Node `yaml:"statement,omitempty"`

	// Document is a path to an IR document, relative to the scenario file.
	Document string `yaml:"document,omitempty"`

	// Expect maps dialect names to expectations. Names go through
	// dialect.Parse, so aliases such as "pg" work and unknown names can be
	// used to assert unsupported_dialect.
	Expect map[string]Expectation `yaml:"expect"`

	// Statements is filled by LoadScenario from Statement or Document.
	Statements []ir.Statement `yaml:"-"`
}

// Expectation is what one dialect must produce for a case.
type Expectation struct {
	// SQL is the exact expected text.
	SQL string `yaml:"sql,omitempty"`

	// Contains lists fragments the generated text must include.
	Contains []string `yaml:"contains,omitempty"`

	// Error is the expected error kind. It excludes SQL and Contains.
	Error sqlerr.Kind `yaml:"error,omitempty"`
}

var expectationFields = map[string]bool{"sql": true, "contains": true, "error": true}

// UnmarshalYAML accepts a bare string as shorthand for {sql: ...}.
func (e *Expectation) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() == "!!null" {
			*e = Expectation{}
			return nil
		}
		*e = Expectation{SQL: value.Value}
		return nil

	case yaml.MappingNode:
		// Node.Decode does not inherit KnownFields from the outer decoder.
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			if !expectationFields[key.Value] {
				return fmt.Errorf("line %d: field %s not found in expectation", key.Line, key.Value)
			}
		}
		type plain Expectation
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*e = Expectation(p)
		return nil
	}
	return fmt.Errorf("line %d: expectation must be a string or a mapping", value.Line)
}

// Success reports whether the expectation requires generation to succeed.
func (e Expectation) Success() bool { return e.Error == "" }

var knownKinds = map[sqlerr.Kind]bool{
	sqlerr.KindValidation:           true,
	sqlerr.KindUnsupportedDialect:   true,
	sqlerr.KindUnsupportedOperation: true,
	sqlerr.KindUnsupportedCondition: true,
	sqlerr.KindOther:                true,
}

// LoadScenario reads and parses a scenario YAML file and loads the IR of
// every case.
func LoadScenario(path string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos)
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.Path = path

	// Validate required fields
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if err := resolveStatements(&scenario, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		inline := c.Statement.Kind != 0
		switch {
		case inline && c.Document != "":
			return fmt.Errorf("cases[%d]: statement and document are mutually exclusive", i)
		case !inline && c.Document == "" && len(c.Statements) == 0:
			return fmt.Errorf("cases[%d]: statement or document is required", i)
		}

		if len(c.Expect) == 0 {
			return fmt.Errorf("cases[%d]: expect is required and must be non-empty", i)
		}
		for name, exp := range c.Expect {
			if err := validateExpectation(exp); err != nil {
				return fmt.Errorf("cases[%d].expect.%s: %w", i, name, err)
			}
		}
	}
	return nil
}

func validateExpectation(e Expectation) error {
	if e.Error == "" {
		return nil
	}
	if !knownKinds[e.Error] {
		return fmt.Errorf("unknown error kind %q", e.Error)
	}
	if e.SQL != "" || len(e.Contains) > 0 {
		return fmt.Errorf("error excludes sql and contains")
	}
	return nil
}

// resolveStatements loads the IR of every case. Inline statements keep the
// scenario file's line numbers in their errors.
func resolveStatements(s *Scenario, baseDir string) error {
	for i := range s.Cases {
		c := &s.Cases[i]

		var (
			doc *loader.Document
			err error
		)
		switch {
		case c.Statement.Kind != 0:
			doc, err = loader.LoadNode(s.Path, &c.Statement)
		case c.Document != "":
			path := c.Document
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			doc, err = loader.LoadFile(path)
		default:
			continue
		}
		if err != nil {
			return fmt.Errorf("case %q: %w", c.Name, err)
		}
		c.Statements = doc.Statements
	}
	return nil
}

// FindScenarios returns the scenario files under dir, sorted. filter is an
// optional glob matched against the file name without its extension.
func FindScenarios(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(d.Name(), ext)
			if matched, _ := filepath.Match(filter, name); !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
