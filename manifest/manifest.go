// Package manifest maps logical dataset keys to file paths under a cache root.
//
// The mapping is loaded once from a JSON config file and is immutable
// afterwards. Resolution is pure: a key always yields the same path for a
// given root. The only I/O the manifest performs is the existence probe on
// a resolved entry; it never reads or writes dataset content.
package manifest

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Version is the manifest config format version written and accepted by
// this package.
const Version = "1.0.0"

// Logical keys for the datasets the project cache serves. Keys suffixed
// _data are per-item keys whose path templates carry an {id} placeholder.
const (
	KeyOphysSessions       = "ophys_sessions"
	KeyBehaviorSessions    = "behavior_sessions"
	KeyOphysExperiments    = "ophys_experiments"
	KeyOphysSessionData    = "ophys_session_data"
	KeyBehaviorSessionData = "behavior_session_data"
)

const itemPlaceholder = "{id}"

var (
	// ErrUnknownKey is returned when a logical key has no configured path
	// template.
	ErrUnknownKey = errors.New("unknown dataset key")

	// ErrMissingItemID is returned when a per-item key is resolved without
	// an item id.
	ErrMissingItemID = errors.New("per-item key resolved without an id")

	// ErrNotItemKey is returned when an item id is supplied for a key whose
	// template has no {id} placeholder.
	ErrNotItemKey = errors.New("key is not a per-item key")

	// ErrVersionMismatch is returned when a manifest config file declares an
	// unsupported format version.
	ErrVersionMismatch = errors.New("unsupported manifest version")
)

const dirPerm = 0o700

// config is the on-disk shape of a manifest file.
type config struct {
	Version    string            `json:"manifest_version" mapstructure:"manifest_version"`
	CachePaths map[string]string `json:"cache_paths" mapstructure:"cache_paths"`
}

// Manifest resolves logical dataset keys to paths under a cache root.
type Manifest struct {
	root  string
	paths map[string]string
}

// DefaultPaths returns the default logical-key to path-template mapping.
// Templates are slash-separated and relative to the cache root.
func DefaultPaths() map[string]string {
	return map[string]string{
		KeyOphysSessions:       "project_metadata/ophys_sessions.json.zst",
		KeyBehaviorSessions:    "project_metadata/behavior_sessions.json.zst",
		KeyOphysExperiments:    "project_metadata/ophys_experiments.json.zst",
		KeyOphysSessionData:    "session_{id}/session_data.json.zst",
		KeyBehaviorSessionData: "behavior_session_{id}/behavior_session_data.json.zst",
	}
}

// Load reads the manifest config at path, creating it with DefaultPaths
// when no file exists. The cache root is the directory containing the
// config file.
func Load(path string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("manifest path is empty")
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeDefault(path); err != nil {
			return nil, fmt.Errorf("write default manifest: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read manifest config: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse manifest config: %w", err)
	}
	return fromConfig(filepath.Dir(path), cfg)
}

// InMemory builds a manifest over root from DefaultPaths without touching
// the filesystem. Used when caching is disabled so that key resolution
// still works but no config file is created.
func InMemory(root string) *Manifest {
	return &Manifest{root: root, paths: DefaultPaths()}
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigType("json")
	v.Set("manifest_version", Version)
	v.Set("cache_paths", DefaultPaths())
	return v.WriteConfigAs(path)
}

func fromConfig(root string, cfg config) (*Manifest, error) {
	if cfg.Version != Version {
		return nil, fmt.Errorf("%w: %q (want %q)", ErrVersionMismatch, cfg.Version, Version)
	}
	if len(cfg.CachePaths) == 0 {
		return nil, errors.New("manifest config has no cache_paths")
	}
	for key, tmpl := range cfg.CachePaths {
		if tmpl == "" {
			return nil, fmt.Errorf("empty path template for key %q", key)
		}
	}
	return &Manifest{root: root, paths: maps.Clone(cfg.CachePaths)}, nil
}

// Root returns the cache root directory.
func (m *Manifest) Root() string {
	return m.root
}

// Keys iterates over the configured logical keys in sorted order.
func (m *Manifest) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, k := range slices.Sorted(maps.Keys(m.paths)) {
			if !yield(k) {
				return
			}
		}
	}
}

// Entry is a resolved manifest entry.
type Entry struct {
	path string
}

// Path returns the absolute file path of the entry.
func (e Entry) Path() string {
	return e.path
}

// Exists reports whether a file is present at the entry's path.
func (e Entry) Exists() bool {
	_, err := os.Stat(e.path)
	return err == nil
}

// Resolve maps a logical key to its entry under the cache root.
// Fails with ErrUnknownKey for unconfigured keys and ErrMissingItemID for
// per-item keys, which require ResolveItem.
func (m *Manifest) Resolve(key string) (Entry, error) {
	tmpl, ok := m.paths[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if strings.Contains(tmpl, itemPlaceholder) {
		return Entry{}, fmt.Errorf("%w: %q", ErrMissingItemID, key)
	}
	return Entry{path: filepath.Join(m.root, filepath.FromSlash(tmpl))}, nil
}

// ResolveItem maps a per-item logical key and item id to its entry,
// substituting the id into the key's {id} placeholder.
func (m *Manifest) ResolveItem(key string, id int64) (Entry, error) {
	tmpl, ok := m.paths[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if !strings.Contains(tmpl, itemPlaceholder) {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotItemKey, key)
	}
	rel := strings.ReplaceAll(tmpl, itemPlaceholder, strconv.FormatInt(id, 10))
	return Entry{path: filepath.Join(m.root, filepath.FromSlash(rel))}, nil
}

// Exists reports whether the file backing a logical key is present.
func (m *Manifest) Exists(key string) bool {
	e, err := m.Resolve(key)
	return err == nil && e.Exists()
}

// ExistsItem reports whether the file backing a per-item key is present.
func (m *Manifest) ExistsItem(key string, id int64) bool {
	e, err := m.ResolveItem(key, id)
	return err == nil && e.Exists()
}
