// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persist

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// fix is one replacement to write into the dataset.
type fix struct {
	key        string
	scenarioID string
	location   string
	from       string
	to         string
}

func (f fix) applied() types.AppliedFix {
	return types.AppliedFix{Key: f.key, Location: f.location, From: f.from, To: f.to}
}

// patcher rewrites dataset bytes. A fix that cannot be located is reported
// as a failure; an error means the document itself could not be handled.
type patcher interface {
	patch(content []byte, fixes []fix) ([]byte, []types.AppliedFix, []types.FixFailure, error)
}

var errNotFound = errors.New("could not locate content to replace")

// textPatcher replaces the first literal occurrence of each current value
// anywhere in the file.
type textPatcher struct{}

func (textPatcher) patch(content []byte, fixes []fix) ([]byte, []types.AppliedFix, []types.FixFailure, error) {
	var applied []types.AppliedFix
	var failed []types.FixFailure
	for _, f := range fixes {
		if f.from == "" || !bytes.Contains(content, []byte(f.from)) {
			failed = append(failed, types.FixFailure{Key: f.key, Reason: errNotFound.Error()})
			continue
		}
		content = bytes.Replace(content, []byte(f.from), []byte(f.to), 1)
		applied = append(applied, f.applied())
	}
	return content, applied, failed, nil
}

// structuredPatcher addresses each fix's field through the YAML node tree
// and rewrites only that scalar, so equal text elsewhere is never touched.
type structuredPatcher struct{}

func (structuredPatcher) patch(content []byte, fixes []fix) ([]byte, []types.AppliedFix, []types.FixFailure, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, nil, nil, fmt.Errorf("parsing dataset: %w", err)
	}

	var applied []types.AppliedFix
	var failed []types.FixFailure
	for _, f := range fixes {
		node, err := locate(&root, f.scenarioID, f.location)
		if err == nil {
			err = replaceScalar(node, f.from, f.to)
		}
		if err != nil {
			failed = append(failed, types.FixFailure{Key: f.key, Reason: err.Error()})
			continue
		}
		applied = append(applied, f.applied())
	}
	if len(applied) == 0 {
		return content, nil, failed, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding dataset: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding dataset: %w", err)
	}
	return buf.Bytes(), applied, failed, nil
}

// replaceScalar swaps the whole value when it equals from, otherwise the
// first occurrence of from inside it.
func replaceScalar(n *yaml.Node, from, to string) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("location is not a scalar")
	}
	switch {
	case from == "":
		return errNotFound
	case n.Value == from:
		n.Value = to
	case strings.Contains(n.Value, from):
		n.Value = strings.Replace(n.Value, from, to, 1)
	default:
		return fmt.Errorf("%w: field holds %q", errNotFound, n.Value)
	}
	return nil
}

// locate finds the scalar node a finding location addresses.
func locate(root *yaml.Node, scenarioID, location string) (*yaml.Node, error) {
	loc, err := types.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	sc := findByKey(mapValue(doc, "scenarios"), "id", scenarioID)
	if sc == nil {
		return nil, fmt.Errorf("scenario %q not found", scenarioID)
	}

	var n *yaml.Node
	switch loc.Kind {
	case types.LocAnswer:
		n = mapValue(findByKey(mapValue(sc, "answer_variations"), "index", strconv.Itoa(loc.Index)), "answer")
	case types.LocAlternative:
		av := findByKey(mapValue(sc, "answer_variations"), "index", strconv.Itoa(loc.Index))
		n = item(mapValue(av, "alternatives"), loc.Sub)
	case types.LocInsight, types.LocPhrase, types.LocCategory:
		n = mapValue(item(mapValue(sc, "deep_dive"), loc.Index), string(loc.Kind))
	case types.LocDialogue:
		n = mapValue(item(mapValue(sc, "dialogue"), loc.Index), "text")
	default:
		return nil, fmt.Errorf("location %s does not address a value", location)
	}
	if n == nil {
		return nil, fmt.Errorf("location %s not found in scenario %s", location, scenarioID)
	}
	return n, nil
}

func mapValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func item(seq *yaml.Node, i int) *yaml.Node {
	if seq == nil || seq.Kind != yaml.SequenceNode || i < 0 || i >= len(seq.Content) {
		return nil
	}
	return seq.Content[i]
}

// findByKey returns the first mapping in seq whose key holds value.
func findByKey(seq *yaml.Node, key, value string) *yaml.Node {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	for _, m := range seq.Content {
		if v := mapValue(m, key); v != nil && v.Value == value {
			return m
		}
	}
	return nil
}
