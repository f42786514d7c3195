package signal

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

const (
	schemaOpen  = "open_signal"
	schemaPrice = "price_update"
)

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compiledSchema(name string) (*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = compileSchemas(schemaYAML)
	})
	if schemasErr != nil {
		return nil, schemasErr
	}
	sch, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown payload schema %s", name)
	}
	return sch, nil
}

func compileSchemas(raw []byte) (map[string]*jsonschema.Schema, error) {
	var docs map[string]map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("parse payload schemas: %w", err)
	}
	out := make(map[string]*jsonschema.Schema, len(docs))
	for name, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode schema %s: %w", name, err)
		}
		url := name + ".json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(url, strings.NewReader(string(data))); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		sch, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = sch
	}
	return out, nil
}

// coerceNumbers turns finite numeric strings in the named top-level fields
// into float64 so alert templates that quote every value still validate.
func coerceNumbers(doc map[string]any, fields ...string) {
	for _, key := range fields {
		str, ok := doc[key].(string)
		if !ok {
			continue
		}
		num, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
			continue
		}
		doc[key] = num
	}
}
