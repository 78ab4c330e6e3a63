package detectors

import (
	"regexp"
	"strings"

	"github.com/digimosa/doc-redact/internal/models"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@(?:[A-Za-z0-9-]+\.)+[A-Za-z]{2,}\b`)

// Institution mailboxes printed on statements and letterheads. They name the
// sender, not the customer.
var roleMailboxes = map[string]bool{
	"noreply":         true,
	"no-reply":        true,
	"donotreply":      true,
	"do-not-reply":    true,
	"support":         true,
	"info":            true,
	"billing":         true,
	"statements":      true,
	"service":         true,
	"customerservice": true,
	"privacy":         true,
	"fraud":           true,
}

type EmailDetector struct {
	BaseRegexDetector
}

func NewEmailDetector() *EmailDetector {
	return &EmailDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: emailPattern,
			Label:   models.TypeEmail,
		},
	}
}

// Detect skips role mailboxes such as statements@bank.com.
func (d *EmailDetector) Detect(content string) []models.Match {
	var out []models.Match
	for _, m := range d.BaseRegexDetector.Detect(content) {
		local, _, _ := strings.Cut(m.Value, "@")
		if roleMailboxes[strings.ToLower(local)] {
			continue
		}
		out = append(out, m)
	}
	return out
}
