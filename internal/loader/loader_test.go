package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/sqlgen"
)

const blogMySQL = "CREATE TABLE `authors` (\n" +
	"  `id` INT AUTO_INCREMENT PRIMARY KEY,\n" +
	"  `name` VARCHAR(100) NOT NULL,\n" +
	"  `rating` DECIMAL(4,2) DEFAULT 2.5\n" +
	");\n" +
	"INSERT INTO `authors` (`name`, `rating`, `id`) VALUES ('Ada', 4.75, 7);\n" +
	"DELETE FROM `authors` WHERE `id` = 7;"

func TestLoadFile_FormatsAgree(t *testing.T) {
	for _, path := range []string{
		"testdata/docs/blog.json",
		"testdata/docs/blog.yaml",
		"testdata/docs/nested/blog.cue",
	} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			doc, err := LoadFile(path)
			require.NoError(t, err)
			require.Len(t, doc.Statements, 3)
			assert.Equal(t, path, doc.Path)

			ins, ok := doc.Statements[1].(*ir.Insert)
			require.True(t, ok)
			assert.Equal(t, []string{"name", "rating", "id"}, ins.Values.Columns(), "key order must survive")

			sql, err := sqlgen.GenerateScript(doc.Statements, dialect.MySQL)
			require.NoError(t, err)
			assert.Equal(t, blogMySQL, sql)
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"a.YAML", FormatYAML, true},
		{"dir/a.yml", FormatYAML, true},
		{"a.cue", FormatCUE, true},
		{"a.sql", "", false},
		{"json", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatOf(tt.path)
		assert.Equal(t, tt.want, got, tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
	}

	f, err := ParseFormat(" YML ")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestYAMLToJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"order and scalars", "z: 1\na: text\nm: true\nn: null\n", `{"z":1,"a":"text","m":true,"n":null}`},
		{"numbers keep their digits", "a: 12.3400\nb: -0.5e3\n", `{"a":12.3400,"b":-0.5e3}`},
		{"yaml integer forms", "hex: 0x1F\nsep: 1_000\n", `{"hex":31,"sep":1000}`},
		{"yes stays a string", "a: yes\n", `{"a":"yes"}`},
		{"quoted numbers stay strings", "a: \"42\"\n", `{"a":"42"}`},
		{"sequences", "- 1\n- [a, b]\n- {k: v}\n", `[1,["a","b"],{"k":"v"}]`},
		{"aliases expand", "base: &b {x: 1}\ncopy: *b\n", `{"base":{"x":1},"copy":{"x":1}}`},
		{"escapes", "a: \"say \\\"hi\\\"\"\n", `{"a":"say \"hi\""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToJSON("t.yaml", []byte(tt.in), FormatYAML)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		data   string
		format Format
		code   string
	}{
		{"json syntax", "bad.json", "{\n  \"kind\": \"begin\",\n}", FormatJSON, ErrCodeSyntax},
		{"yaml syntax", "bad.yaml", "kind: [begin\n", FormatYAML, ErrCodeSyntax},
		{"yaml empty", "empty.yaml", "", FormatYAML, ErrCodeSyntax},
		{"yaml duplicate key", "dup.yaml", "kind: begin\nkind: commit\n", FormatYAML, ErrCodeSyntax},
		{"yaml infinity", "inf.yaml", "kind: insert\ntable: t\nvalues: {a: .inf}\n", FormatYAML, ErrCodeSyntax},
		{"yaml merge key", "merge.yaml", "base: &b {x: 1}\nother:\n  <<: *b\n", FormatYAML, ErrCodeSyntax},
		{"cue conflict", "bad.cue", "kind: \"begin\"\nkind: \"commit\"\n", FormatCUE, ErrCodeBuildFailed},
		{"cue incomplete", "open.cue", "kind: string\n", FormatCUE, ErrCodeBuildFailed},
		{"unknown kind", "merge.json", `{"kind": "merge"}`, FormatJSON, ErrCodeDecode},
		{"bad version", "v2.yaml", "version: \"2\"\nkind: begin\n", FormatYAML, ErrCodeDecode},
		{"unknown format", "x.toml", "", "toml", ErrCodeUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Load(tt.path, []byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, IsLoadError(err))

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code, le.Error())
			assert.Contains(t, le.Error(), tt.path)
		})
	}
}

func TestLoad_ErrorDetails(t *testing.T) {
	_, err := Load("bad.json", []byte("{\n  \"kind\": \"begin\",\n}"), FormatJSON)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 3, le.Line)

	_, err = Load("bad.cue", []byte("kind: \"begin\"\nkind: \"commit\"\n"), FormatCUE)
	require.ErrorAs(t, err, &le)
	assert.True(t, le.Pos.IsValid(), "cue errors keep their position")
	assert.Contains(t, le.Error(), "bad.cue:")

	_, err = Load("dup.yaml", []byte("kind: begin\nkind: commit\n"), FormatYAML)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 2, le.Line)

	_, err = Load("merge.json", []byte(`{"kind": "merge"}`), FormatJSON)
	var de *ir.DecodeError
	require.True(t, errors.As(err, &de), "decode errors stay reachable")
	assert.Equal(t, "merge", de.Kind)
}

func TestYAMLToJSON_Aliases(t *testing.T) {
	got, err := ToJSON("t.yaml", []byte("a: &v [1, 2]\nb: *v\n"), FormatYAML)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,2],"b":[1,2]}`, string(got))

	// Nine levels of nine-way aliases would expand to gigabytes of JSON.
	var src strings.Builder
	src.WriteString("l0: &l0 [\"xxxxxxxx\"]\n")
	for i := 1; i <= 9; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*l%d,", i-1), 9), ",")
		fmt.Fprintf(&src, "l%d: &l%d [%s]\n", i, i, refs)
	}

	_, err = ToJSON("bomb.yaml", []byte(src.String()), FormatYAML)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeSyntax, le.Code)
	assert.Contains(t, le.Message, "excessive aliasing")
	assert.Positive(t, le.Line)

	_, err = Load("bomb.yaml", []byte(src.String()), FormatYAML)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeSyntax, le.Code)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile("testdata/docs/notes.txt")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeUnknownFormat, le.Code)

	_, err = LoadFile("testdata/docs/missing.json")
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestFind(t *testing.T) {
	files, err := Find([]string{"testdata/docs"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "docs", "blog.json"),
		filepath.Join("testdata", "docs", "blog.yaml"),
		filepath.Join("testdata", "docs", "nested", "blog.cue"),
	}, files)

	// Files are taken as given, in argument order.
	files, err = Find([]string{"testdata/docs/blog.yaml", "testdata/docs/notes.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/docs/blog.yaml", "testdata/docs/notes.txt"}, files)
}

func TestFind_Errors(t *testing.T) {
	_, err := Find([]string{"testdata/nope"})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)

	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(empty, "readme.md"), []byte("#"), 0o644))
	_, err = Find([]string{empty})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNoFiles, le.Code)
}

func TestLoadNode(t *testing.T) {
	src := "name: embedded\nstatement:\n  kind: insert\n  table: t\n  values: {b: 1, a: 2}\nbroken:\n  kind: merge\n"
	var root yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &root))
	m := root.Content[0]

	doc, err := LoadNode("s.yaml", m.Content[3])
	require.NoError(t, err)
	require.Len(t, doc.Statements, 1)
	ins := doc.Statements[0].(*ir.Insert)
	assert.Equal(t, []string{"b", "a"}, ins.Values.Columns())

	_, err = LoadNode("s.yaml", m.Content[5])
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeDecode, le.Code)
	assert.Equal(t, 7, le.Line)

	_, err = LoadNode("s.yaml", &yaml.Node{})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeSyntax, le.Code)
}
