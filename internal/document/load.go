package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "go.yaml.in/yaml/v3"
)

// Format names a serialization syntax for documents.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// includePattern matches a string value that splices another file into the
// document, e.g. "$(bodies/earth.json)".
var includePattern = regexp.MustCompile(`^\$\((.+)\)$`)

// FormatOf picks a format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatJSON, FormatTOML, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Parse decodes data in the given format. Includes are not expanded.
func Parse(data []byte, f Format) (Value, error) {
	var raw any
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return Value{}, fmt.Errorf("parsing JSON: %w", err)
		}
	case FormatTOML:
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return Value{}, fmt.Errorf("parsing TOML: %w", err)
		}
		raw = m
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Value{}, fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	return From(raw)
}

// LoadFile reads a document and expands every $(file) include relative to
// the directory of the file that contains it.
func LoadFile(path string) (Value, error) {
	v, _, err := LoadFileIncludes(path)
	return v, err
}

// LoadFileIncludes is LoadFile that also returns the absolute path of every
// file read, the main document first. On error the list holds the files
// read before the failure.
func LoadFileIncludes(path string) (Value, []string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Value{}, nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	var files []string
	v, err := loadFile(abs, nil, &files)
	return v, files, err
}

// LoadFiles loads each file and deep-merges them left to right, so later
// files override earlier ones.
func LoadFiles(paths ...string) (Value, error) {
	if len(paths) == 0 {
		return Value{}, errors.New("no document files given")
	}
	var out Value
	for i, p := range paths {
		v, err := LoadFile(p)
		if err != nil {
			return Value{}, err
		}
		if i == 0 {
			out = v
			continue
		}
		out = Merge(out, v)
	}
	return out, nil
}

func loadFile(path string, stack []string, files *[]string) (Value, error) {
	next := append(stack[:len(stack):len(stack)], path)
	for _, p := range stack {
		if p == path {
			return Value{}, fmt.Errorf("%w: %s", ErrIncludeCycle, strings.Join(next, " -> "))
		}
	}
	*files = append(*files, path)
	f, err := FormatOf(path)
	if err != nil {
		return Value{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Value{}, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := Parse(data, f)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return expandIncludes(v, filepath.Dir(path), next, files)
}

func expandIncludes(v Value, dir string, stack []string, files *[]string) (Value, error) {
	switch v.kind {
	case KindString:
		m := includePattern.FindStringSubmatch(v.str)
		if m == nil {
			return v, nil
		}
		target := m[1]
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		return loadFile(filepath.Clean(target), stack, files)
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			e, err := expandIncludes(item, dir, stack, files)
			if err != nil {
				return Value{}, err
			}
			items[i] = e
		}
		return Value{kind: KindList, list: items}, nil
	case KindMap:
		fields := make(map[string]Value, len(v.m))
		for k, item := range v.m {
			e, err := expandIncludes(item, dir, stack, files)
			if err != nil {
				return Value{}, err
			}
			fields[k] = e
		}
		return Value{kind: KindMap, m: fields}, nil
	}
	return v, nil
}

// Encode serializes v. TOML has no null, so null map entries and list
// elements are dropped for that format.
func Encode(v Value, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatTOML:
		if v.kind != KindMap {
			return nil, fmt.Errorf("encoding TOML: top level must be a map, got %s", v.kind)
		}
		return toml.Marshal(stripNulls(v).Interface())
	case FormatYAML:
		return yaml.Marshal(v.Interface())
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func stripNulls(v Value) Value {
	switch v.kind {
	case KindList:
		items := make([]Value, 0, len(v.list))
		for _, item := range v.list {
			if !item.IsNull() {
				items = append(items, stripNulls(item))
			}
		}
		return Value{kind: KindList, list: items}
	case KindMap:
		fields := make(map[string]Value, len(v.m))
		for k, item := range v.m {
			if !item.IsNull() {
				fields[k] = stripNulls(item)
			}
		}
		return Value{kind: KindMap, m: fields}
	}
	return v
}
