package whitelist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var ErrEmptyValue = errors.New("whitelist value is empty")

// Whitelist holds values that must never be reported or redacted, such as
// a company's own support address. Matching ignores case and spacing.
type Whitelist struct {
	mu    sync.RWMutex
	items map[string]string
	path  string
}

// New loads a whitelist from path. A missing file starts empty and an empty
// path keeps the whitelist in memory only.
func New(path string) (*Whitelist, error) {
	w := &Whitelist{
		items: make(map[string]string),
		path:  path,
	}
	if path == "" {
		return w, nil
	}
	if err := w.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load whitelist %s: %w", path, err)
	}
	return w, nil
}

func normalize(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

// load reads the whitelist file line by line. Lines starting with # are comments.
func (w *Whitelist) load() error {
	file, err := os.Open(w.path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		w.items[normalize(line)] = line
	}
	return scanner.Err()
}

// Contains checks if the value is in the whitelist.
func (w *Whitelist) Contains(value string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.items[normalize(value)]
	return ok
}

// Add adds a new value to the whitelist and appends it to the backing file.
func (w *Whitelist) Add(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyValue
	}
	key := normalize(value)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.items[key]; ok {
		return nil
	}

	if w.path != "" {
		if dir := filepath.Dir(w.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := f.WriteString(value + "\n"); err != nil {
			return err
		}
	}

	w.items[key] = value
	return nil
}

// Values returns the whitelisted values as originally entered, sorted.
func (w *Whitelist) Values() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, 0, len(w.items))
	for _, v := range w.items {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (w *Whitelist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.items)
}
