// Package loader reads IR documents from JSON, YAML and CUE files.
//
// Every format is normalised to JSON and then decoded by ir.DecodeDocument,
// so the three formats accept exactly the same documents. Mapping key order
// is preserved through the conversion; INSERT value order depends on it.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlir/internal/ir"
)

// Error codes. They are stable and appear in CLI output.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No IR documents found
	ErrCodeReadFailed    = "E004" // File read error
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE evaluation failed
	ErrCodeUnknownFormat = "E008" // Unsupported file extension

	ErrCodeSyntax = "E010" // JSON or YAML syntax error
	ErrCodeDecode = "E020" // Document is well-formed but not valid IR
)

// LoadError is an error loading one document.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Line    int       // YAML/JSON line if available
	Err     error
}

func (e *LoadError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Code, e.Message)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	}
	return "", false
}

// ParseFormat parses a format name as given on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cue":
		return FormatCUE, nil
	}
	return "", fmt.Errorf("unknown input format %q (want json, yaml or cue)", s)
}

// Document is a loaded IR document.
type Document struct {
	Path       string
	Format     Format
	Statements []ir.Statement
}

// LoadFile reads and decodes the document at path.
func LoadFile(path string) (*Document, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, &LoadError{Code: ErrCodeUnknownFormat, Path: path,
			Message: fmt.Sprintf("unsupported extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path))}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found", Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: err.Error(), Err: err}
	}
	return Load(path, data, format)
}

// Load decodes data in the given format. path is only used for messages and
// CUE positions.
func Load(path string, data []byte, format Format) (*Document, error) {
	raw, err := ToJSON(path, data, format)
	if err != nil {
		return nil, err
	}

	stmts, err := ir.DecodeDocument(raw)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Path: path, Message: err.Error(), Err: err}
	}
	return &Document{Path: path, Format: format, Statements: stmts}, nil
}

// LoadNode decodes statements embedded as a YAML node in another file.
func LoadNode(path string, n *yaml.Node) (*Document, error) {
	raw, err := NodeToJSON(path, n)
	if err != nil {
		return nil, err
	}
	stmts, err := ir.DecodeDocument(raw)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Path: path, Line: n.Line, Message: err.Error(), Err: err}
	}
	return &Document{Path: path, Format: FormatYAML, Statements: stmts}, nil
}

// ToJSON converts a document to JSON without decoding it.
func ToJSON(path string, data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if err := checkJSON(path, data); err != nil {
			return nil, err
		}
		return data, nil
	case FormatYAML:
		return yamlToJSON(path, data)
	case FormatCUE:
		return cueToJSON(path, data)
	}
	return nil, &LoadError{Code: ErrCodeUnknownFormat, Path: path, Message: fmt.Sprintf("unknown format %q", format)}
}

func checkJSON(path string, data []byte) error {
	var v json.RawMessage
	err := json.Unmarshal(data, &v)
	if err == nil {
		return nil
	}
	le := &LoadError{Code: ErrCodeSyntax, Path: path, Message: err.Error(), Err: err}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		le.Line = 1 + bytes.Count(data[:se.Offset], []byte("\n"))
	}
	return le
}

// Find expands paths into the sorted list of documents they name. Files are
// kept as given; directories are walked for supported extensions.
func Find(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: p, Message: "path not found", Err: err}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Path: p, Message: err.Error(), Err: err}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := FormatOf(path); ok {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Path: p, Message: fmt.Sprintf("scanning directory: %v", err), Err: err}
		}
		if len(found) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Path: p, Message: "no .json, .yaml, .yml or .cue documents found"}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
