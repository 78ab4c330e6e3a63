package detectors

import (
	"bytes"
	"sort"

	"github.com/cloudflare/ahocorasick"
)

// FinancialKeywords mark a document as financial. Matches inside such
// documents get a higher baseline confidence.
var FinancialKeywords = []string{
	"account", "bank", "financial", "loan", "transaction", "balance",
	"payment", "deposit", "routing", "credit", "statement", "wire transfer",
}

// KeywordSet is a case-insensitive multi-keyword matcher.
type KeywordSet struct {
	words   []string
	matcher *ahocorasick.Matcher
}

func NewKeywordSet(words ...string) *KeywordSet {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = string(bytes.ToLower([]byte(w)))
	}
	return &KeywordSet{
		words:   lowered,
		matcher: ahocorasick.NewStringMatcher(lowered),
	}
}

// Found returns the distinct keywords present in text, sorted.
func (k *KeywordSet) Found(text string) []string {
	if k == nil || len(k.words) == 0 || text == "" {
		return nil
	}
	hits := k.matcher.Match(bytes.ToLower([]byte(text)))
	seen := make(map[string]bool, len(hits))
	var out []string
	for _, idx := range hits {
		w := k.words[idx]
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// Contains reports whether any keyword occurs in text.
func (k *KeywordSet) Contains(text string) bool {
	return len(k.Found(text)) > 0
}

var financialSet = NewKeywordSet(FinancialKeywords...)

// HasFinancialContext reports whether the text reads like a financial document.
func HasFinancialContext(text string) bool {
	return financialSet.Contains(text)
}
