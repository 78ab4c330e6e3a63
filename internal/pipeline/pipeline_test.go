package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/doc-redact/internal/ai"
	"github.com/digimosa/doc-redact/internal/extractor"
	"github.com/digimosa/doc-redact/internal/models"
	"github.com/digimosa/doc-redact/internal/whitelist"
)

const statement = `ACME Financial Statement
Customer Name: John Smith
SSN: 123-45-6789
Card: 4111 1111 1111 1111
Email: john.smith@example.com
Phone: (555) 123-4567
Address: 123 Main Street, Springfield, IL 62704
Bank: First National Bank
Routing Number: 021000021`

// textExtractor treats the raw bytes as the document text.
type textExtractor struct {
	visual []models.VisualDetection
	err    error
}

func (e textExtractor) Extract(data []byte) (*extractor.Extraction, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &extractor.Extraction{Text: string(data), Pages: 1, MediaType: "text/plain"}, nil
}

func (e textExtractor) DetectVisual([]byte) ([]models.VisualDetection, error) {
	return e.visual, nil
}

type fakeVerifier struct {
	err   error
	calls int
}

func (f *fakeVerifier) Verify(_ context.Context, category models.FindingType, value, _ string) (ai.Verdict, error) {
	f.calls++
	if f.err != nil {
		return ai.Verdict{}, f.err
	}
	if category == models.TypeOrganization {
		return ai.Verdict{Valid: false, Confidence: 0.2}, nil
	}
	return ai.Verdict{Valid: true, Confidence: 0.97}, nil
}

func newTestPipeline(t *testing.T, ex extractor.Extractor, opts Options) *Pipeline {
	t.Helper()
	f := extractor.NewFactory()
	f.Register(".txt", ex)
	f.Register(".pdf", ex)
	opts.Factory = f
	p, err := New(opts)
	require.NoError(t, err)
	return p
}

func byCategory(log *models.AuditLog) map[string][]string {
	out := map[string][]string{}
	for k, items := range log.TextPII {
		for _, d := range items {
			out[k] = append(out[k], d.Value)
		}
	}
	return out
}

func TestProcessFinancialStatement(t *testing.T) {
	var stages []models.ProcessingStage
	p := newTestPipeline(t, textExtractor{}, Options{
		OnStage: func(s models.ProcessingStage) { stages = append(stages, s) },
	})

	log, redacted, err := p.Process(context.Background(), Document{Name: "docs/statement.txt", Data: []byte(statement)})
	require.NoError(t, err)

	assert.Equal(t, models.Stages, stages)
	assert.Equal(t, "statement.txt", log.Document)
	assert.True(t, log.Metadata.FinancialContext)
	assert.Len(t, log.Metadata.StageTimings, len(models.Stages))

	assert.Equal(t, map[string][]string{
		"ssn":            {"123-45-6789"},
		"credit_card":    {"4111 1111 1111 1111"},
		"email":          {"john.smith@example.com"},
		"phone":          {"(555) 123-4567"},
		"location":       {"123 Main Street, Springfield, IL 62704"},
		"organization":   {"First National Bank"},
		"name":           {"John Smith"},
		"routing_number": {"021000021"},
	}, byCategory(log))

	assert.Equal(t, 8, log.TotalTextPII)
	assert.Equal(t, 0, log.TotalVisualPII)
	assert.Equal(t, "Line 3, Column 6-16", log.TextPII["ssn"][0].Location)
	assert.Equal(t, 0.9, log.TextPII["ssn"][0].Confidence)
	assert.Equal(t, models.MethodChecksum, log.TextPII["credit_card"][0].Method)
	assert.Equal(t, 0.95, log.TextPII["credit_card"][0].Confidence)
	assert.Equal(t, models.MethodNER, log.TextPII["name"][0].Method)

	assert.Equal(t, models.RiskHigh, log.RiskLevel)
	assert.Equal(t, models.StatusCompliant, log.ComplianceStatus)
	assert.InDelta(t, (0.9+0.95+0.9+0.9+0.85+0.85+0.85+0.95)/8, log.OverallConfidence, 1e-9)
	assert.Equal(t, []string{"checksum", "ner", "regex"}, log.Metadata.DetectionMethods)
	require.NoError(t, log.Validate())

	assert.Contains(t, redacted, "SSN: [REDACTED:SSN]")
	assert.Contains(t, redacted, "Card: [REDACTED:CREDIT_CARD]")
	assert.Contains(t, redacted, "Customer Name: [REDACTED:NAME]")
	assert.NotContains(t, redacted, "123-45-6789")
	assert.True(t, strings.HasPrefix(redacted, "ACME Financial Statement\n"))
}

func TestProcessLowConfidenceNeedsReview(t *testing.T) {
	p := newTestPipeline(t, textExtractor{}, Options{})

	log, _, err := p.Process(context.Background(), Document{
		Name: "notes.txt",
		Data: []byte("Meeting notes\nContact: Jane Miller\nSSN 123-45-6789"),
	})
	require.NoError(t, err)

	assert.False(t, log.Metadata.FinancialContext)
	assert.Equal(t, 0.75, log.TextPII["ssn"][0].Confidence)
	assert.Equal(t, 0.7, log.TextPII["name"][0].Confidence)
	assert.Equal(t, models.StatusReviewRequired, log.ComplianceStatus)
	assert.Equal(t, models.RiskHigh, log.RiskLevel)
}

func TestProcessCleanDocument(t *testing.T) {
	p := newTestPipeline(t, textExtractor{}, Options{})

	log, redacted, err := p.Process(context.Background(), Document{Name: "poem.txt", Data: []byte("roses are red\nviolets are blue")})
	require.NoError(t, err)
	assert.Equal(t, 0, log.TotalDetections())
	assert.Equal(t, 1.0, log.OverallConfidence)
	assert.Equal(t, models.RiskLow, log.RiskLevel)
	assert.Equal(t, models.StatusCompliant, log.ComplianceStatus)
	assert.Equal(t, "roses are red\nviolets are blue", redacted)
}

func TestProcessWhitelist(t *testing.T) {
	wl, err := whitelist.New("")
	require.NoError(t, err)
	require.NoError(t, wl.Add("john.smith@example.com"))

	p := newTestPipeline(t, textExtractor{}, Options{Whitelist: wl})
	log, redacted, err := p.Process(context.Background(), Document{Name: "s.txt", Data: []byte(statement)})
	require.NoError(t, err)

	assert.NotContains(t, log.TextPII, "email")
	assert.Contains(t, redacted, "john.smith@example.com")
}

func TestProcessVisualFindings(t *testing.T) {
	ex := textExtractor{visual: []models.VisualDetection{
		{Type: "signature", Page: 1, BBox: models.BoundingBox{1, 2, 3, 4}, Confidence: 0.6, Method: models.MethodAnnotation},
	}}
	p := newTestPipeline(t, ex, Options{})

	log, _, err := p.Process(context.Background(), Document{Name: "s.txt", Data: []byte("nothing here")})
	require.NoError(t, err)
	assert.Equal(t, 1, log.TotalVisualPII)
	assert.Equal(t, models.StatusReviewRequired, log.ComplianceStatus)
	assert.Equal(t, []string{models.MethodAnnotation}, log.Metadata.DetectionMethods)
}

func TestProcessContextualAnalysis(t *testing.T) {
	v := &fakeVerifier{}
	p := newTestPipeline(t, textExtractor{}, Options{Verifier: v})

	log, _, err := p.Process(context.Background(), Document{Name: "s.txt", Data: []byte(statement)})
	require.NoError(t, err)

	assert.True(t, log.Metadata.LLMVerified)
	assert.NotContains(t, log.TextPII, "organization")
	require.Len(t, log.TextPII["name"], 1)
	assert.Equal(t, models.MethodLLM, log.TextPII["name"][0].Method)
	assert.Equal(t, 0.97, log.TextPII["name"][0].Confidence)
	assert.Equal(t, models.MethodLLM, log.TextPII["location"][0].Method)
	// Pattern findings never go to the verifier.
	assert.Equal(t, 3, v.calls)
}

func TestProcessContextualAnalysisFailureKeepsFindings(t *testing.T) {
	v := &fakeVerifier{err: errors.New("connection refused")}
	p := newTestPipeline(t, textExtractor{}, Options{Verifier: v})

	log, _, err := p.Process(context.Background(), Document{Name: "s.txt", Data: []byte(statement)})
	require.NoError(t, err)

	assert.False(t, log.Metadata.LLMVerified)
	assert.Contains(t, log.TextPII, "organization")
	assert.Equal(t, models.MethodNER, log.TextPII["name"][0].Method)
	assert.Equal(t, 1, v.calls)
}

func TestProcessErrors(t *testing.T) {
	p := newTestPipeline(t, textExtractor{err: errors.New("boom")}, Options{})

	_, _, err := p.Process(context.Background(), Document{Name: "s.txt", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrExtractionFailed)

	_, _, err = p.Process(context.Background(), Document{Name: "s.docx", Data: []byte("x")})
	assert.ErrorIs(t, err, extractor.ErrUnsupportedFormat)

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d}
	log, _, err := p.Process(context.Background(), Document{Name: "scan.jpg", Data: png})
	assert.ErrorIs(t, err, extractor.ErrContentMismatch)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Nil(t, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = p.Process(ctx, Document{Name: "s.txt", Data: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *fakeRecorder) SaveRun(_ context.Context, _ *models.AuditLog, path string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return uint(len(r.paths)), nil
}

type fakePublisher struct {
	runs []uint
	err  error
}

func (p *fakePublisher) PublishRunCompleted(_ context.Context, runID uint, _ *models.AuditLog) error {
	p.runs = append(p.runs, runID)
	return p.err
}

func TestServiceProcessUpload(t *testing.T) {
	out := t.TempDir()
	rec := &fakeRecorder{}
	pub := &fakePublisher{err: errors.New("nats down")}
	svc := NewService(newTestPipeline(t, textExtractor{}, Options{}), out, WithRecorder(rec), WithPublisher(pub))

	res, err := svc.ProcessUpload(context.Background(), "statement.pdf", []byte(statement))
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, uint(1), res.RunID)
	assert.Equal(t, "redacted_statement.txt", res.RedactedFile)
	assert.Equal(t, res.RedactedFile, res.AuditLog.RedactedOutput)
	assert.Equal(t, []uint{1}, pub.runs)

	require.Len(t, rec.paths, 1)
	data, err := os.ReadFile(rec.paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[REDACTED:SSN]")
	assert.True(t, strings.HasPrefix(rec.paths[0], out))
}

func TestServiceRejectsSelection(t *testing.T) {
	svc := NewService(newTestPipeline(t, textExtractor{}, Options{}), t.TempDir(), WithMaxBytes(10))

	_, err := svc.ProcessUpload(context.Background(), "statement.pdf", []byte(statement))
	assert.ErrorIs(t, err, models.ErrFileTooLarge)

	_, err = svc.ProcessUpload(context.Background(), "statement.docx", []byte("x"))
	assert.ErrorIs(t, err, models.ErrUnsupportedType)
}

func TestServiceDetectReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.pdf")
	require.NoError(t, os.WriteFile(path, []byte(statement), 0o644))

	svc := NewService(newTestPipeline(t, textExtractor{}, Options{}), t.TempDir())
	res, err := svc.Detect(context.Background(), models.SelectedFile{Name: "statement.pdf", Path: path})
	require.NoError(t, err)
	assert.Equal(t, uint(0), res.RunID)
	assert.Equal(t, 8, res.AuditLog.TotalTextPII)

	_, err = svc.Detect(context.Background(), models.SelectedFile{Name: "gone.pdf", Path: filepath.Join(dir, "gone.pdf")})
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte(statement), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.pdf"), []byte("Email: jane@example.org"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.docx"), []byte("ignored"), 0o644))
	missing := filepath.Join(dir, "missing.pdf")

	rec := &fakeRecorder{}
	svc := NewService(newTestPipeline(t, textExtractor{}, Options{}), t.TempDir(), WithRecorder(rec))
	results := svc.RunBatch(context.Background(), []string{dir, missing}, 3)

	require.Len(t, results, 3)
	assert.Equal(t, filepath.Join(dir, "a.pdf"), results[0].Path)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, missing, results[1].Path)
	assert.Error(t, results[1].Err)
	assert.Equal(t, filepath.Join(dir, "sub", "b.pdf"), results[2].Path)
	require.NoError(t, results[2].Err)
	assert.Equal(t, 1, results[2].Result.AuditLog.TotalTextPII)
	assert.Len(t, rec.paths, 2)
}
