package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/doc-redact/internal/models"
)

// fakeService answers Detect from scripted outcomes. Calls for a document
// listed in gates block until the gate is closed.
type fakeService struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]outcome
	gates   map[string]chan struct{}
	started chan string
}

type outcome struct {
	result *models.DetectionResult
	err    error
}

func newFakeService() *fakeService {
	return &fakeService{
		results: make(map[string][]outcome),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
}

func (f *fakeService) respond(name string, outs ...outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[name] = append(f.results[name], outs...)
}

func (f *fakeService) gate(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[name] = ch
	return ch
}

func (f *fakeService) Detect(_ context.Context, file models.SelectedFile) (*models.DetectionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, file.Name)
	gate := f.gates[file.Name]
	var out outcome
	if queue := f.results[file.Name]; len(queue) > 0 {
		out = queue[0]
		f.results[file.Name] = queue[1:]
	}
	f.mu.Unlock()

	f.started <- file.Name
	if gate != nil {
		<-gate
	}
	return out.result, out.err
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func resultFor(name string, categories map[string]int, visual int) *models.DetectionResult {
	log := &models.AuditLog{
		Document:          name,
		Timestamp:         time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		TextPII:           make(map[string][]models.Detection),
		OverallConfidence: 0.9,
		RiskLevel:         models.RiskHigh,
		ComplianceStatus:  models.StatusCompliant,
	}
	for category, n := range categories {
		for i := 0; i < n; i++ {
			log.TextPII[category] = append(log.TextPII[category], models.Detection{
				Value: category, Method: models.MethodRegex, Confidence: 0.9, Location: "Line 1, Column 1-4",
			})
		}
	}
	for i := 0; i < visual; i++ {
		log.VisualPII = append(log.VisualPII, models.VisualDetection{
			Type: "signature", Page: 1, BBox: models.BoundingBox{0, 0, 10, 10}, Confidence: 0.9, Method: models.MethodAnnotation,
		})
	}
	log.Recount()
	return &models.DetectionResult{Status: "success", RedactedFile: "redacted_" + name + ".txt", AuditLog: log}
}

// harness plays the bubbletea runtime: commands run on their own goroutines
// and their messages are applied one at a time on the test goroutine.
type harness struct {
	t       *testing.T
	c       *Controller
	msgs    chan tea.Msg
	pending int
	stages  []models.ProcessingStage
}

func newHarness(t *testing.T, c *Controller) *harness {
	return &harness{t: t, c: c, msgs: make(chan tea.Msg, 128)}
}

func (h *harness) dispatch(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	h.pending++
	go func() { h.msgs <- cmd() }()
}

func (h *harness) handle(msg tea.Msg) {
	h.pending--
	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, cmd := range msg {
			h.dispatch(cmd)
		}
	default:
		before := h.c.Stage()
		h.dispatch(h.c.Update(msg))
		if after := h.c.Stage(); after != before {
			h.stages = append(h.stages, after)
		}
	}
}

func (h *harness) step() {
	h.t.Helper()
	select {
	case msg := <-h.msgs:
		h.handle(msg)
	case <-time.After(5 * time.Second):
		h.t.Fatal("timed out waiting for a message")
	}
}

// waitStarted keeps applying messages until the service receives a call.
func (h *harness) waitStarted(svc *fakeService) string {
	h.t.Helper()
	for {
		select {
		case name := <-svc.started:
			return name
		case msg := <-h.msgs:
			h.handle(msg)
		case <-time.After(5 * time.Second):
			h.t.Fatal("service was never called")
		}
	}
}

func (h *harness) drain() {
	h.t.Helper()
	for h.pending > 0 {
		h.step()
	}
}

func (h *harness) until(cond func() bool) {
	h.t.Helper()
	for !cond() {
		require.Positive(h.t, h.pending, "no pending commands but condition not met")
		h.step()
	}
}

func (h *harness) start() {
	h.t.Helper()
	cmd := h.c.StartProcessing()
	require.NotNil(h.t, cmd)
	h.dispatch(cmd)
}

func (h *harness) finish() {
	h.t.Helper()
	h.until(func() bool { return !h.c.InProgress() })
}

func file(name string, size int64) models.SelectedFile {
	return models.SelectedFile{Name: name, Size: size, MediaType: "application/pdf", Path: "/tmp/" + name}
}

func TestStagesRunInOrder(t *testing.T) {
	svc := newFakeService()
	svc.respond("report.pdf", outcome{result: resultFor("report.pdf", map[string]int{"ssn": 1}, 0)})

	c := New(svc, WithStageDelayScale(0.001))
	h := newHarness(t, c)

	c.SelectFile(file("report.pdf", 1024))
	h.start()
	assert.Equal(t, models.StageIdle, c.Stage())
	assert.True(t, c.InProgress())
	h.finish()

	want := append(append([]models.ProcessingStage{}, models.Stages...), models.StageIdle)
	assert.Equal(t, want, h.stages)
	assert.Equal(t, StateSucceeded, c.State())
}

func TestStagesCompleteWhenServiceIsSlow(t *testing.T) {
	svc := newFakeService()
	gate := svc.gate("slow.pdf")
	svc.respond("slow.pdf", outcome{result: resultFor("slow.pdf", nil, 0)})

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)
	c.SelectFile(file("slow.pdf", 10))
	h.start()

	h.until(func() bool { return c.Stage() == models.StageFinalizing && c.animDone })
	assert.True(t, c.InProgress(), "run waits for the service")
	assert.Equal(t, StateProcessing, c.State())

	close(gate)
	h.finish()
	assert.Equal(t, StateSucceeded, c.State())
	assert.Equal(t, models.StageIdle, c.Stage())
}

func TestStartWhileProcessingIsNoOp(t *testing.T) {
	svc := newFakeService()
	gate := svc.gate("a.pdf")
	svc.respond("a.pdf", outcome{result: resultFor("a.pdf", nil, 0)})

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)
	c.SelectFile(file("a.pdf", 10))
	h.start()
	h.waitStarted(svc)

	run, stage := c.run, c.Stage()
	assert.False(t, c.CanStart())
	assert.Nil(t, c.StartProcessing())
	assert.Equal(t, run, c.run)
	assert.Equal(t, stage, c.Stage())
	assert.True(t, c.InProgress())

	close(gate)
	h.finish()
	assert.Equal(t, 1, svc.callCount())
}

func TestStartRequiresFile(t *testing.T) {
	c := New(newFakeService())
	assert.Equal(t, StateNoFile, c.State())
	assert.False(t, c.CanStart())
	assert.Nil(t, c.StartProcessing())
}

func TestSelectFileClearsOutcome(t *testing.T) {
	svc := newFakeService()
	svc.respond("a.pdf", outcome{result: resultFor("a.pdf", map[string]int{"email": 2}, 0)})
	svc.respond("b.pdf", outcome{err: errors.New("boom")})

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)

	c.SelectFile(file("a.pdf", 10))
	h.start()
	h.finish()
	require.Equal(t, StateSucceeded, c.State())
	c.ToggleDetails()

	c.SelectFile(file("b.pdf", 10))
	assert.Equal(t, StateFileSelected, c.State())
	assert.Nil(t, c.Result())
	assert.Empty(t, c.Err())
	assert.False(t, c.DetailsExpanded())

	h.start()
	h.finish()
	require.Equal(t, StateFailed, c.State())

	c.SelectFile(file("c.pdf", 10))
	assert.Equal(t, StateFileSelected, c.State())
	assert.Empty(t, c.Err())
}

func TestExportAvailability(t *testing.T) {
	svc := newFakeService()
	svc.respond("statement.pdf", outcome{result: resultFor("statement.pdf", map[string]int{"ssn": 1}, 1)})

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)

	assert.False(t, c.CanExport())
	_, ok := c.ExportReport()
	assert.False(t, ok)

	c.SelectFile(file("statement.pdf", 10))
	assert.False(t, c.CanExport())
	_, ok = c.ExportReport()
	assert.False(t, ok)

	h.start()
	assert.False(t, c.CanExport())
	h.finish()

	require.True(t, c.CanExport())
	artifact, ok := c.ExportReport()
	require.True(t, ok)
	assert.Equal(t, "redacted_audit_report_statement.pdf", artifact.Name)
	assert.Contains(t, string(artifact.Content), "SOCIAL SECURITY NUMBERS (1 instance):")

	again, ok := c.ExportReport()
	require.True(t, ok)
	assert.Equal(t, artifact.Content, again.Content)

	path, err := artifact.Save(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Content, saved)
}

func TestToggleDetailsTwiceRestores(t *testing.T) {
	c := New(newFakeService())
	initial := c.DetailsExpanded()
	c.ToggleDetails()
	assert.NotEqual(t, initial, c.DetailsExpanded())
	c.ToggleDetails()
	assert.Equal(t, initial, c.DetailsExpanded())
}

func TestScenarioElevenDetections(t *testing.T) {
	svc := newFakeService()
	svc.respond("report.pdf", outcome{result: resultFor("report.pdf", map[string]int{"ssn": 2, "email": 3, "phone": 4}, 2)})

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)
	c.SelectFile(file("report.pdf", 2<<20))
	h.start()
	h.finish()

	assert.Equal(t, StateSucceeded, c.State())
	assert.Len(t, c.Result().AuditLog.TextPII, 3)
	assert.Equal(t, 11, c.TotalDetections())
	assert.False(t, c.InProgress())
}

func TestScenarioFailureThenRetry(t *testing.T) {
	svc := newFakeService()
	svc.respond("scan.png",
		outcome{err: errors.New("connection refused")},
		outcome{result: resultFor("scan.png", nil, 1)},
	)

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)
	c.SelectFile(file("scan.png", 100))

	h.start()
	h.finish()
	assert.Equal(t, StateFailed, c.State())
	assert.False(t, c.InProgress())
	assert.Nil(t, c.Result())
	assert.Equal(t, ProcessingFailedMessage, c.Err())
	assert.Equal(t, models.StageIdle, c.Stage())
	assert.True(t, c.CanStart())

	h.start()
	assert.Empty(t, c.Err())
	h.finish()
	assert.Equal(t, StateSucceeded, c.State())
	assert.Equal(t, 1, c.TotalDetections())
}

func TestEmptyResultIsFailure(t *testing.T) {
	svc := newFakeService()
	svc.respond("a.pdf", outcome{})

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)
	c.SelectFile(file("a.pdf", 10))
	h.start()
	h.finish()
	assert.Equal(t, StateFailed, c.State())
}

type panicService struct{}

func (panicService) Detect(context.Context, models.SelectedFile) (*models.DetectionResult, error) {
	panic("unexpected")
}

func TestServicePanicIsFailure(t *testing.T) {
	c := New(panicService{}, WithStageDelayScale(0))
	h := newHarness(t, c)
	c.SelectFile(file("a.pdf", 10))
	h.start()
	h.finish()
	assert.Equal(t, StateFailed, c.State())
	assert.Equal(t, ProcessingFailedMessage, c.Err())
}

func TestScenarioStaleResultDiscarded(t *testing.T) {
	svc := newFakeService()
	gateA := svc.gate("a.pdf")
	svc.respond("a.pdf", outcome{result: resultFor("a.pdf", map[string]int{"ssn": 5}, 0)})
	svc.respond("b.pdf", outcome{result: resultFor("b.pdf", map[string]int{"email": 1}, 0)})

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)

	c.SelectFile(file("a.pdf", 10))
	h.start()
	require.Equal(t, "a.pdf", h.waitStarted(svc))

	c.SelectFile(file("b.pdf", 10))
	assert.Equal(t, StateFileSelected, c.State())
	assert.False(t, c.InProgress())

	h.start()
	h.until(func() bool { return c.State() == StateSucceeded })
	require.Equal(t, "b.pdf", c.Result().AuditLog.Document)

	close(gateA)
	h.drain()
	assert.Equal(t, StateSucceeded, c.State())
	assert.Equal(t, "b.pdf", c.Result().AuditLog.Document)
	assert.Equal(t, 1, c.TotalDetections())
}

func TestStaleFailureDiscarded(t *testing.T) {
	svc := newFakeService()
	gateA := svc.gate("a.pdf")
	svc.respond("a.pdf", outcome{err: errors.New("late failure")})

	c := New(svc, WithStageDelayScale(0))
	h := newHarness(t, c)
	c.SelectFile(file("a.pdf", 10))
	h.start()
	h.waitStarted(svc)

	c.SelectFile(file("b.pdf", 10))
	close(gateA)
	h.drain()
	assert.Equal(t, StateFileSelected, c.State())
	assert.Empty(t, c.Err())
}

func TestSkipAnimation(t *testing.T) {
	svc := newFakeService()
	svc.respond("a.pdf", outcome{result: resultFor("a.pdf", nil, 0)})

	c := New(svc, WithStageDurations(func(models.ProcessingStage) time.Duration { return time.Hour }))
	h := newHarness(t, c)

	assert.Nil(t, c.SkipAnimation())

	c.SelectFile(file("a.pdf", 10))
	h.start()
	h.until(func() bool { return c.Stage() == models.StageExtractingText })

	h.dispatch(c.SkipAnimation())
	assert.Nil(t, c.SkipAnimation(), "second skip is a no-op")
	h.until(func() bool { return c.State() == StateSucceeded })

	want := append(append([]models.ProcessingStage{}, models.Stages...), models.StageIdle)
	assert.Equal(t, want, h.stages)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "no_file", StateNoFile.String())
	assert.Equal(t, "processing", StateProcessing.String())
	assert.Equal(t, "failed", StateFailed.String())
}

func TestSelectPath(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "statement.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644))
	doc := filepath.Join(dir, "notes.docx")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0o644))
	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", 64)), 0o644))

	sel, err := SelectPath(pdf, 0)
	require.NoError(t, err)
	assert.Equal(t, "statement.pdf", sel.Name)
	assert.Equal(t, int64(8), sel.Size)
	assert.Equal(t, "application/pdf", sel.MediaType)

	_, err = SelectPath(doc, 0)
	assert.ErrorIs(t, err, ErrSelectionRejected)
	assert.ErrorIs(t, err, models.ErrUnsupportedType)

	_, err = SelectPath(big, 32)
	assert.ErrorIs(t, err, models.ErrFileTooLarge)

	_, err = SelectPath(dir, 0)
	assert.ErrorIs(t, err, ErrSelectionRejected)
}
