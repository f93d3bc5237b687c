package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// JSON re-indents JSON documents in process.
type JSON struct{}

func (JSON) Name() string                   { return "json" }
func (JSON) Hint() string                   { return "" }
func (JSON) Available(context.Context) bool { return true }

func (JSON) Format(_ context.Context, text string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(text)), "", "  "); err != nil {
		return "", err
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// YAML normalises YAML documents through a yaml.v3 node round trip, which
// keeps comments and key order.
type YAML struct{}

func (YAML) Name() string                   { return "yaml" }
func (YAML) Hint() string                   { return "" }
func (YAML) Available(context.Context) bool { return true }

func (YAML) Format(_ context.Context, text string) (string, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if err := enc.Encode(&node); err != nil {
			return "", err
		}
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
