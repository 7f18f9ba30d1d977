package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"

	"gopkg.in/yaml.v3"
)

// jsonNumber is the JSON number grammar. YAML numbers that already match it
// are copied through as written so decimals keep every digit.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// maxAliasOutput caps the JSON produced once aliases are expanded. A few
// nested anchors can otherwise grow a small document exponentially.
const maxAliasOutput = 8 << 20

// yamlToJSON converts a YAML document to JSON by walking the node tree.
// Decoding into maps would lose key order.
func yamlToJSON(path string, data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Path: path, Message: fmt.Sprintf("failed to parse YAML: %v", err), Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &LoadError{Code: ErrCodeSyntax, Path: path, Message: "empty YAML document"}
	}
	return NodeToJSON(path, doc.Content[0])
}

// NodeToJSON converts an already parsed YAML node to JSON. Scenario files use
// it for statements embedded in a larger document; errors carry the node's
// line in that file.
func NodeToJSON(path string, n *yaml.Node) ([]byte, error) {
	if n == nil || n.Kind == 0 {
		return nil, &LoadError{Code: ErrCodeSyntax, Path: path, Message: "empty YAML node"}
	}

	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		var ne *nodeError
		if errors.As(err, &ne) {
			return nil, &LoadError{Code: ErrCodeSyntax, Path: path, Line: ne.line, Message: ne.msg}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error(), Err: err}
	}
	return buf.Bytes(), nil
}

type nodeError struct {
	line int
	msg  string
}

func (e *nodeError) Error() string { return fmt.Sprintf("line %d: %s", e.line, e.msg) }

func nodeErrorf(n *yaml.Node, format string, args ...any) error {
	return &nodeError{line: n.Line, msg: fmt.Sprintf(format, args...)}
}

func writeNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNode(buf, n.Content[0])

	case yaml.AliasNode:
		if n.Alias == nil {
			return nodeErrorf(n, "unresolved alias %q", n.Value)
		}
		if buf.Len() > maxAliasOutput {
			return nodeErrorf(n, "excessive aliasing: document expands past %d bytes", maxAliasOutput)
		}
		return writeNode(buf, n.Alias)

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.MappingNode:
		buf.WriteByte('{')
		seen := make(map[string]bool, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nodeErrorf(key, "mapping keys must be scalars")
			}
			if key.ShortTag() == "!!merge" {
				return nodeErrorf(key, "merge keys are not supported")
			}
			if seen[key.Value] {
				return nodeErrorf(key, "duplicate key %q", key.Value)
			}
			seen[key.Value] = true

			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key.Value)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := writeNode(buf, value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.ScalarNode:
		return writeScalar(buf, n)
	}
	return nodeErrorf(n, "unsupported YAML node kind %d", n.Kind)
}

func writeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
		return nil

	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nodeErrorf(n, "invalid boolean %q", n.Value)
		}
		if b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil

	case "!!int":
		if jsonNumber.MatchString(n.Value) {
			buf.WriteString(n.Value)
			return nil
		}
		// 0x1F, 0o17, 1_000 and friends.
		var i int64
		if err := n.Decode(&i); err != nil {
			return nodeErrorf(n, "invalid integer %q", n.Value)
		}
		fmt.Fprintf(buf, "%d", i)
		return nil

	case "!!float":
		if jsonNumber.MatchString(n.Value) {
			buf.WriteString(n.Value)
			return nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nodeErrorf(n, "invalid number %q", n.Value)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nodeErrorf(n, "%s has no JSON representation", n.Value)
		}
		b, err := json.Marshal(f)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	// Strings, timestamps and anything else stay text.
	b, err := json.Marshal(n.Value)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
