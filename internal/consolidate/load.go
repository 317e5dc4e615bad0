package consolidate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed fragment.schema.json
var fragmentSchemaJSON string

const fragmentSchemaURL = "fragment.schema.json"

// fragmentKind names a file inside a document folder and the schema
// definition it is validated against.
type fragmentKind struct {
	File string
	Def  string
}

var (
	kindDoc    = fragmentKind{File: "doc.json", Def: "doc"}
	kindPeople = fragmentKind{File: "people.json", Def: "people"}
	kindEdges  = fragmentKind{File: "edges.json", Def: "edges"}
	kindOrgs   = fragmentKind{File: "org.json", Def: "orgs"}
	kindRefs   = fragmentKind{File: "ref.json", Def: "refs"}
)

var (
	compileOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(fragmentSchemaURL, strings.NewReader(fragmentSchemaJSON)); err != nil {
			schemasErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		compiled := make(map[string]*jsonschema.Schema)
		for _, k := range []fragmentKind{kindDoc, kindPeople, kindEdges, kindOrgs, kindRefs} {
			s, err := compiler.Compile(fragmentSchemaURL + "#/$defs/" + k.Def)
			if err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", k.Def, err)
				return
			}
			compiled[k.Def] = s
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

// loader reads fragment files. A file that is missing, unparsable or does
// not match its schema reads as nil; only the latter two are logged.
type loader struct {
	schemas map[string]*jsonschema.Schema
	logger  zerolog.Logger
}

func newLoader(logger zerolog.Logger) (*loader, error) {
	s, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	return &loader{schemas: s, logger: logger}, nil
}

func (l *loader) load(path string, kind fragmentKind) any {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn().Err(err).Str("path", path).Msg("failed to read fragment")
		}
		return nil
	}

	value, err := decodeJSON(data)
	if err != nil {
		l.logger.Warn().Err(err).Str("path", path).Msg("malformed fragment, treating as empty")
		return nil
	}

	if err := l.schemas[kind.Def].Validate(value); err != nil {
		l.logger.Warn().Err(err).Str("path", path).Msg("fragment does not match schema, treating as empty")
		return nil
	}
	return value
}

func decodeJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("file contains trailing content")
	}
	return value, nil
}

// objects returns the object items of v. v is either a list or an object
// holding the list under the first present key.
func objects(v any, keys ...string) []map[string]any {
	var list []any
	switch t := v.(type) {
	case []any:
		list = t
	case map[string]any:
		for _, k := range keys {
			if l, ok := t[k].([]any); ok {
				list = l
				break
			}
		}
	}

	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
