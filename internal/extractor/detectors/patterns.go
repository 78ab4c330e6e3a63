package detectors

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/coregx/coregex"
	"gopkg.in/yaml.v3"

	"github.com/digimosa/doc-redact/internal/models"
)

//go:embed patterns
var embeddedPatterns embed.FS

// contextWindow is how far back a context keyword may appear.
const contextWindow = 40

type PatternTemplate struct {
	ID              string   `yaml:"id"`
	Type            string   `yaml:"type"`
	Description     string   `yaml:"description"`
	Regex           string   `yaml:"regex"`
	Validator       string   `yaml:"validator"`
	ContextKeywords []string `yaml:"context_keywords"`
}

type PatternFile struct {
	Name     string            `yaml:"name"`
	Version  string            `yaml:"version"`
	Category string            `yaml:"category"`
	Patterns []PatternTemplate `yaml:"patterns"`
}

// PatternDetector runs one YAML-defined pattern.
type PatternDetector struct {
	ID        string
	Label     models.FindingType
	Regex     *coregex.Regexp
	Validator func(string) bool
	Context   *KeywordSet

	// coregex's lazy DFA is not safe for concurrent use
	mu sync.Mutex
}

var validators = map[string]func(string) bool{
	"aba":  abaCheck,
	"luhn": func(s string) bool { return luhnCheck(digitsOnly(s)) },
}

// LoadPatternDetectors compiles every embedded pattern file.
func LoadPatternDetectors() ([]Detector, error) {
	return loadPatternFS(embeddedPatterns, "patterns")
}

func loadPatternFS(fsys fs.FS, root string) ([]Detector, error) {
	var out []Detector
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		parsed, err := ParsePatternFile(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, parsed...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	return out, nil
}

// ParsePatternFile decodes and compiles a single pattern file.
func ParsePatternFile(data []byte) ([]Detector, error) {
	var file PatternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	var out []Detector
	for _, pt := range file.Patterns {
		d, err := compilePattern(pt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pt.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func compilePattern(pt PatternTemplate) (*PatternDetector, error) {
	if pt.Type == "" {
		return nil, fmt.Errorf("missing type")
	}
	re, err := coregex.Compile(pt.Regex)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}

	d := &PatternDetector{
		ID:    pt.ID,
		Label: models.FindingType(pt.Type),
		Regex: re,
	}
	if pt.Validator != "" {
		v, ok := validators[pt.Validator]
		if !ok {
			return nil, fmt.Errorf("unknown validator %q", pt.Validator)
		}
		d.Validator = v
	}
	if len(pt.ContextKeywords) > 0 {
		d.Context = NewKeywordSet(pt.ContextKeywords...)
	}
	return d, nil
}

func (d *PatternDetector) Type() models.FindingType {
	return d.Label
}

func (d *PatternDetector) Detect(content string) []models.Match {
	data := []byte(content)

	d.mu.Lock()
	hits := d.Regex.FindAll(data, -1)
	d.mu.Unlock()

	method := models.MethodRegex
	if d.Validator != nil {
		method = models.MethodChecksum
	}

	var found []models.Match
	cursor := 0
	for _, hit := range hits {
		rel := bytes.Index(data[cursor:], hit)
		if rel < 0 {
			continue
		}
		start := cursor + rel
		end := start + len(hit)
		cursor = end

		value := string(hit)
		if d.Validator != nil && !d.Validator(value) {
			continue
		}
		if d.Context != nil && !d.Context.Contains(preceding(content, start, contextWindow)) {
			continue
		}
		found = append(found, models.Match{
			Type:    d.Label,
			Method:  method,
			Value:   value,
			Snippet: snippet(content, start, end),
			Offset:  int64(start),
		})
	}
	return found
}

// abaCheck validates the routing number checksum: 3-7-1 weights mod 10.
func abaCheck(s string) bool {
	digits := digitsOnly(s)
	if len(digits) != 9 {
		return false
	}
	weights := [3]int{3, 7, 1}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * weights[i%3]
	}
	return sum != 0 && sum%10 == 0
}
