package reporting

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/digimosa/doc-redact/internal/models"
)

type item struct {
	Branch string
	Line   string
}

type group struct {
	Title string
	Count string
	Items []item
}

type row struct {
	Category    string
	Value       string
	Method      string
	Confidence  string
	Location    string
	Page        int
	BBox        string
	Description string
	Low         bool
}

// view is the flattened audit log shared by the text and HTML templates.
type view struct {
	Document         string
	Date             string
	Time             string
	DocumentID       string
	Duration         string
	FileSize         string
	MediaType        string
	Pages            int
	FinancialContext bool
	LLMVerified      bool
	Compliance       string
	Risk             string
	Threshold        string
	TextTotal        int
	TextCategories   int
	VisualTotal      int
	VisualCategories int
	Total            int
	TextGroups       []group
	VisualGroups     []group
	TextRows         []row
	VisualRows       []row
	Methods          []item
	Stages           []string
	AvgText          string
	AvgVisual        string
	Overall          string
	RedactedOutput   string
}

// Options tune how a report is rendered.
type Options struct {
	// Threshold marks findings below it for review. Zero means 0.8.
	Threshold float64
}

func (o Options) threshold() float64 {
	if o.Threshold <= 0 {
		return 0.8
	}
	return o.Threshold
}

func newView(log *models.AuditLog, opts Options) view {
	threshold := opts.threshold()
	v := view{
		Document:         log.Document,
		Date:             log.Timestamp.UTC().Format("2006-01-02"),
		Time:             log.Timestamp.UTC().Format("15:04:05 MST"),
		DocumentID:       documentID(log),
		Duration:         fmt.Sprintf("%.1f seconds", float64(log.Metadata.ProcessingMillis)/1000),
		FileSize:         humanSize(log.Metadata.FileSize),
		MediaType:        orDash(log.Metadata.MediaType),
		Pages:            log.Metadata.Pages,
		FinancialContext: log.Metadata.FinancialContext,
		LLMVerified:      log.Metadata.LLMVerified,
		Compliance:       string(log.ComplianceStatus),
		Risk:             string(log.RiskLevel),
		Threshold:        percent(threshold),
		TextTotal:        log.TotalTextPII,
		TextCategories:   len(log.TextPII),
		VisualTotal:      log.TotalVisualPII,
		Total:            log.TotalDetections(),
		AvgText:          percent(log.AverageTextConfidence()),
		AvgVisual:        percent(log.AverageVisualConfidence()),
		Overall:          percent(log.OverallConfidence),
		RedactedOutput:   orDash(log.RedactedOutput),
	}

	for _, category := range log.Categories() {
		items := log.TextPII[category]
		g := group{Title: CategoryTitle(category), Count: instances(len(items))}
		for i, d := range items {
			g.Items = append(g.Items, item{
				Branch: branch(i, len(items)),
				Line:   fmt.Sprintf("%s (%s, %s confidence, %s)", d.Value, MethodName(d.Method), percent(d.Confidence), d.Location),
			})
			v.TextRows = append(v.TextRows, row{
				Category:   CategoryTitle(category),
				Value:      d.Value,
				Method:     MethodName(d.Method),
				Confidence: percent(d.Confidence),
				Location:   d.Location,
				Low:        d.Confidence < threshold,
			})
		}
		v.TextGroups = append(v.TextGroups, g)
	}

	byType := make(map[string][]models.VisualDetection)
	var types []string
	for _, d := range log.VisualPII {
		if _, ok := byType[d.Type]; !ok {
			types = append(types, d.Type)
		}
		byType[d.Type] = append(byType[d.Type], d)
	}
	sort.Strings(types)
	v.VisualCategories = len(types)
	for _, t := range types {
		items := byType[t]
		g := group{Title: VisualTitle(t), Count: instances(len(items))}
		for i, d := range items {
			g.Items = append(g.Items, item{
				Branch: branch(i, len(items)),
				Line: fmt.Sprintf("Page %d: %s (%s, %s confidence, BBox: %s)",
					d.Page, d.Description, MethodName(d.Method), percent(d.Confidence), bbox(d.BBox)),
			})
			v.VisualRows = append(v.VisualRows, row{
				Category:    VisualTitle(t),
				Page:        d.Page,
				BBox:        bbox(d.BBox),
				Method:      MethodName(d.Method),
				Confidence:  percent(d.Confidence),
				Description: d.Description,
				Low:         d.Confidence < threshold,
			})
		}
		v.VisualGroups = append(v.VisualGroups, g)
	}

	for i, m := range log.Metadata.DetectionMethods {
		v.Methods = append(v.Methods, item{Branch: branch(i, len(log.Metadata.DetectionMethods)), Line: MethodName(m)})
	}
	for _, s := range models.Stages {
		v.Stages = append(v.Stages, s.Label())
	}
	return v
}

// documentID derives a stable identifier from the document and its run time.
func documentID(log *models.AuditLog) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(log.Document))
	_, _ = h.Write([]byte(log.Timestamp.UTC().Format("20060102150405.000000000")))
	return fmt.Sprintf("DOC-%08X", h.Sum32())
}

func branch(i, n int) string {
	if i == n-1 {
		return "└─"
	}
	return "├─"
}

func instances(n int) string {
	if n == 1 {
		return "1 instance"
	}
	return fmt.Sprintf("%d instances", n)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func bbox(b models.BoundingBox) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%.0f", c)
	}
	return strings.Join(parts, ",")
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
