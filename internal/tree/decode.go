package tree

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "mem://treesh/tree.schema.json"

// Format selects the document syntax accepted by Decode.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks a format from a file name: JSON for .json, YAML otherwise.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("external $ref not allowed: %s", url)
	}
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add tree schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Decode reads a stream of tree documents from r. Every document is checked
// against the tree schema and the shape invariants before it is returned.
func Decode(r io.Reader, format Format) ([]*Node, error) {
	var docs [][]byte
	var err error
	switch format {
	case FormatJSON:
		docs, err = splitJSON(r)
	default:
		docs, err = splitYAML(r)
	}
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(docs))
	for i, doc := range docs {
		n, err := decodeDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeDocument(doc []byte) (*Node, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(doc, &generic); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var n Node
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

func splitJSON(r io.Reader) ([][]byte, error) {
	var docs [][]byte
	dec := json.NewDecoder(r)
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return docs, nil
			}
			return nil, fmt.Errorf("read JSON document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, raw)
	}
}

// splitYAML converts each YAML document into JSON so that both formats share
// one validation and decoding path.
func splitYAML(r io.Reader) ([][]byte, error) {
	var docs [][]byte
	dec := yaml.NewDecoder(r)
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return docs, nil
			}
			return nil, fmt.Errorf("read YAML document %d: %w", len(docs)+1, err)
		}
		if v == nil {
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("convert YAML document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, data)
	}
}
