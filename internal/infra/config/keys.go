package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
)

// The settings editor works on the raw YAML document rather than the typed
// Config so that unknown keys survive an edit/save cycle.

// KeyValue is one editable leaf of the configuration tree.
type KeyValue struct {
	Key   string // dotted path, e.g. "agi_logger.logger.duration"
	Value any
}

// LoadRaw reads the configuration file as a generic document. The root key
// must be present, as in Load.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDomainError("Config.LoadRaw", domain.ErrConfigLoad,
			fmt.Sprintf("config file not found: %s", path))
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, domain.NewDomainError("Config.LoadRaw", domain.ErrConfigLoad,
			fmt.Sprintf("parse %s: %v", path, err))
	}
	if _, ok := raw[RootKey]; !ok {
		return nil, domain.NewDomainError("Config.LoadRaw", domain.ErrConfigLoad,
			fmt.Sprintf("missing %q root key in %s", RootKey, path))
	}
	return raw, nil
}

// SaveRaw writes a generic document back to disk.
func SaveRaw(raw map[string]any, path string) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Section walks a dotted key and returns the nested map at that path, or an
// empty map when the path does not denote a map.
func Section(raw map[string]any, dotted string) map[string]any {
	node := raw
	for _, part := range strings.Split(dotted, ".") {
		child, ok := node[part].(map[string]any)
		if !ok {
			return map[string]any{}
		}
		node = child
	}
	return node
}

// IterKeys flattens a document subtree into sorted dotted-key leaves.
func IterKeys(node map[string]any, prefix string) []KeyValue {
	var out []KeyValue
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			out = append(out, IterKeys(child, full)...)
			continue
		}
		out = append(out, KeyValue{Key: full, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// UpdateKey sets a dotted key in the document, creating intermediate maps as
// needed. An empty key is rejected.
func UpdateKey(raw map[string]any, dotted string, value any) error {
	if dotted == "" {
		return domain.NewDomainError("Config.UpdateKey", domain.ErrInvalidConfig, "empty key")
	}
	parts := strings.Split(dotted, ".")
	node := raw
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return nil
}

// ParseValue interprets user input the way the settings editor expects:
// booleans, null, integers, and floats decode to their native types, anything
// else stays a string.
func ParseValue(rawValue string) any {
	switch strings.ToLower(rawValue) {
	case "true":
		return true
	case "false":
		return false
	case "null", "none":
		return nil
	}
	if strings.Contains(rawValue, ".") {
		if f, err := strconv.ParseFloat(rawValue, 64); err == nil {
			return f
		}
	} else if i, err := strconv.Atoi(rawValue); err == nil {
		return i
	}
	return rawValue
}
