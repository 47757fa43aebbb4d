package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/sigtrack/internal/log"
)

// SaveAntidelay writes antidelay.last_seconds into the config file.
// Other keys, comments and ordering are preserved by editing the yaml.Node
// tree instead of re-marshaling a Config.
func SaveAntidelay(configPath string, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("antidelay must be >= 0, got %d", seconds)
	}
	err := updateScalar(configPath, []string{"antidelay", "last_seconds"}, &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!int",
		Value: strconv.Itoa(seconds),
	})
	if err != nil {
		log.ErrorErr(log.CatConfig, "Failed to save antidelay", err, "path", configPath)
		return err
	}
	log.Debug(log.CatConfig, "Saved antidelay", "seconds", seconds, "path", configPath)
	return nil
}

// updateScalar sets the value at keyPath, creating intermediate mappings.
func updateScalar(configPath string, keyPath []string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // G304: user config path
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	node := doc.Content[0]
	for i, key := range keyPath {
		last := i == len(keyPath)-1
		child := lookup(node, key)
		switch {
		case child == nil && last:
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
		case child == nil:
			child = &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, child)
			node = child
		case last:
			// Keep any line comment attached to the old value.
			value.LineComment = child.LineComment
			*child = *value
		case child.Kind != yaml.MappingNode:
			return fmt.Errorf("config key %q is not a mapping", key)
		default:
			node = child
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// lookup returns the value node for key in a mapping node.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// writeAtomic writes data to a temp file beside path and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".sigtrack.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
