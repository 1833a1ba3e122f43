package state

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Snapshot renders the document as canonical YAML: mapping keys sorted,
// two-space indent. The output is meant for reading and for pasting into a
// shared campaign canvas; the JSON file remains the storage format.
func Snapshot(doc Document) (string, error) {
	return SnapshotValue(map[string]any(doc))
}

// SnapshotValue renders any subtree of a document the same way, which is
// what zone-restricted views use.
func SnapshotValue(v any) (string, error) {
	node, err := yamlNode(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("failed to render snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to render snapshot: %w", err)
	}
	return buf.String(), nil
}

// yamlNode builds an explicit node tree so mapping keys come out sorted;
// yaml.Marshal on a plain map would emit them in random order.
func yamlNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			var keyNode yaml.Node
			if err := keyNode.Encode(k); err != nil {
				return nil, err
			}
			valNode, err := yamlNode(t[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, &keyNode, valNode)
		}
		return node, nil
	case Card:
		return yamlNode(map[string]any(t))
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range t {
			itemNode, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, itemNode)
		}
		return node, nil
	default:
		var node yaml.Node
		if err := node.Encode(v); err != nil {
			return nil, err
		}
		return &node, nil
	}
}
