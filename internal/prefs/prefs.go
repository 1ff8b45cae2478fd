// Package prefs provides JSON-based application preferences.
//
// Keys are dotted paths ("calibration.0.N"); values are stored as opaque
// strings so that doubles survive a save/load cycle bit for bit.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	appDir    = "projmap"
	prefsFile = "preferences.json"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]string
	path   string // empty for in-memory stores
}

var (
	defaultOnce  sync.Once
	defaultPrefs *Prefs
	defaultErr   error
)

// Default returns the process-wide store, loading it from DefaultPath on first
// use. A load failure still yields a usable (empty) store; the error is
// returned on every call.
func Default() (*Prefs, error) {
	defaultOnce.Do(func() {
		defaultPrefs, defaultErr = Load(DefaultPath())
	})
	return defaultPrefs, defaultErr
}

// DefaultPath returns ~/.config/projmap/preferences.json (or the platform
// equivalent).
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, prefsFile)
}

// New returns an empty in-memory store. Flush is a no-op.
func New() *Prefs {
	return &Prefs{values: make(map[string]string)}
}

// Load reads preferences from path. A missing file is not an error. If the
// file cannot be read or parsed, the returned store is empty (but still bound
// to path) and the error says why.
func Load(path string) (*Prefs, error) {
	p := New()
	p.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, errors.Wrap(err, "error reading preferences")
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return p, errors.Wrapf(err, "error parsing preferences %s", path)
	}
	for k, v := range values {
		p.values[k] = v
	}
	return p, nil
}

// Path returns the backing file, or "" for in-memory stores.
func (p *Prefs) Path() string { return p.path }

// Flush writes preferences to disk, replacing the file atomically.
func (p *Prefs) Flush() (err error) {
	if p.path == "" {
		return nil
	}

	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "error creating preferences directory")
	}

	f, err := os.CreateTemp(dir, prefsFile+".*")
	if err != nil {
		return errors.Wrap(err, "error creating preferences file")
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(f.Name()))
		}
	}()

	_, err = f.Write(data)
	err = multierr.Append(err, f.Close())
	if err != nil {
		return errors.Wrap(err, "error writing preferences")
	}
	return errors.Wrap(os.Rename(f.Name(), p.path), "error replacing preferences")
}

func (p *Prefs) get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *Prefs) put(key, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Int returns an int preference, or fallback if not set or not an int.
func (p *Prefs) Int(key string, fallback int) int {
	if v, ok := p.get(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// PutInt stores an int preference.
func (p *Prefs) PutInt(key string, val int) {
	p.put(key, strconv.Itoa(val))
}

// Double returns a float64 preference, or fallback if not set or not a number.
func (p *Prefs) Double(key string, fallback float64) float64 {
	if v, ok := p.get(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// PutDouble stores a float64 preference using the shortest representation
// that parses back to the same value.
func (p *Prefs) PutDouble(key string, val float64) {
	p.put(key, strconv.FormatFloat(val, 'g', -1, 64))
}

// String returns a string preference, or fallback if not set.
func (p *Prefs) String(key, fallback string) string {
	if v, ok := p.get(key); ok {
		return v
	}
	return fallback
}

// PutString stores a string preference.
func (p *Prefs) PutString(key, val string) {
	p.put(key, val)
}

// Remove deletes a key and every key below it in the hierarchy.
func (p *Prefs) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.values {
		if k == key || strings.HasPrefix(k, key+".") {
			delete(p.values, k)
		}
	}
}

// Keys returns the sorted keys below prefix ("" lists everything).
func (p *Prefs) Keys(prefix string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var keys []string
	for k := range p.values {
		if prefix == "" || strings.HasPrefix(k, prefix+".") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
