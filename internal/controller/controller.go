// Package controller drives one document through selection, processing and
// result display. It is an Elm-style state holder: operations return
// tea.Cmds for asynchronous work and all state changes happen in Update on
// the caller's single goroutine.
package controller

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/models"
	"github.com/digimosa/doc-redact/internal/reporting"
)

// ProcessingFailedMessage is the only failure text shown to the user.
const ProcessingFailedMessage = "An error occurred during processing"

// DetectionService runs detection for one selected file.
type DetectionService interface {
	Detect(ctx context.Context, file models.SelectedFile) (*models.DetectionResult, error)
}

// State is the controller's position in its lifecycle.
type State int

const (
	StateNoFile State = iota
	StateFileSelected
	StateProcessing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFileSelected:
		return "file_selected"
	case StateProcessing:
		return "processing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "no_file"
	}
}

// stageMsg moves the progress display to stage. StageIdle ends the sequence.
type stageMsg struct {
	run   uint64
	seq   uint64
	stage models.ProcessingStage
}

type resultMsg struct {
	run    uint64
	result *models.DetectionResult
	err    error
}

type Controller struct {
	service  DetectionService
	duration func(models.ProcessingStage) time.Duration
	report   reporting.Options
	log      *logrus.Entry

	file       *models.SelectedFile
	stage      models.ProcessingStage
	inProgress bool
	result     *models.DetectionResult
	errMsg     string
	details    bool

	// run identifies the current run. Messages from other runs are dropped.
	run    uint64
	seq    uint64
	skip   bool
	cancel context.CancelFunc

	animDone    bool
	serviceDone bool
	outcome     resultMsg
}

type Option func(*Controller)

// WithStageDelayScale multiplies every stage's hold duration. Zero turns the
// animation into an immediate walk through the stages.
func WithStageDelayScale(scale float64) Option {
	return func(c *Controller) {
		c.duration = func(s models.ProcessingStage) time.Duration {
			return time.Duration(float64(s.DefaultDuration()) * scale)
		}
	}
}

// WithStageDurations overrides how long each stage is held.
func WithStageDurations(fn func(models.ProcessingStage) time.Duration) Option {
	return func(c *Controller) { c.duration = fn }
}

// WithReportOptions sets how exported reports are rendered.
func WithReportOptions(opts reporting.Options) Option {
	return func(c *Controller) { c.report = opts }
}

func New(service DetectionService, opts ...Option) *Controller {
	c := &Controller{
		service:  service,
		duration: models.ProcessingStage.DefaultDuration,
		log:      logging.Component("controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectFile replaces the selection and clears any outcome. A run in flight
// is abandoned and its eventual result ignored.
func (c *Controller) SelectFile(file models.SelectedFile) {
	if c.inProgress {
		c.log.WithField("document", c.file.Name).Debug("abandoning run for new selection")
		c.endRun()
	}
	c.file = &file
	c.result = nil
	c.errMsg = ""
	c.details = false
	c.stage = models.StageIdle
}

// StartProcessing begins a run. It returns nil when there is no file or a run
// is already in progress.
func (c *Controller) StartProcessing() tea.Cmd {
	if !c.CanStart() {
		return nil
	}

	c.run++
	c.seq++
	c.inProgress = true
	c.skip = false
	c.animDone = false
	c.serviceDone = false
	c.outcome = resultMsg{}
	c.errMsg = ""
	c.result = nil
	c.stage = models.StageIdle

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.log.WithFields(logrus.Fields{"document": c.file.Name, "run": c.run}).Info("processing started")
	return tea.Batch(
		c.advance(models.StageExtractingText, 0),
		detect(ctx, c.service, *c.file, c.run),
	)
}

// SkipAnimation fast-forwards the remaining stages. Every stage is still
// visited in order.
func (c *Controller) SkipAnimation() tea.Cmd {
	if !c.inProgress || c.animDone || c.skip {
		return nil
	}
	c.skip = true
	c.seq++
	return c.advance(c.stage.Next(), 0)
}

func (c *Controller) ToggleDetails() {
	c.details = !c.details
}

// Update applies an asynchronous completion. Messages that belong to another
// run are discarded.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case stageMsg:
		if !c.current(msg.run) || msg.seq != c.seq || c.animDone {
			return nil
		}
		if msg.stage == models.StageIdle {
			c.animDone = true
			return c.join()
		}
		c.stage = msg.stage
		return c.advance(msg.stage.Next(), c.hold(msg.stage))
	case resultMsg:
		if !c.current(msg.run) || c.serviceDone {
			return nil
		}
		c.serviceDone = true
		c.outcome = msg
		return c.join()
	}
	return nil
}

func (c *Controller) current(run uint64) bool {
	return c.inProgress && run == c.run
}

func (c *Controller) hold(stage models.ProcessingStage) time.Duration {
	if c.skip {
		return 0
	}
	return c.duration(stage)
}

func (c *Controller) advance(next models.ProcessingStage, after time.Duration) tea.Cmd {
	msg := stageMsg{run: c.run, seq: c.seq, stage: next}
	if after <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(after, func(time.Time) tea.Msg { return msg })
}

// join finishes the run once both the stage sequence and the service call
// are done.
func (c *Controller) join() tea.Cmd {
	if !c.animDone || !c.serviceDone {
		return nil
	}

	fields := logrus.Fields{"document": c.file.Name, "run": c.run}
	switch {
	case c.outcome.err != nil:
		c.errMsg = ProcessingFailedMessage
		c.log.WithFields(fields).WithField("error", c.outcome.err).Error("processing failed")
	case c.outcome.result == nil || c.outcome.result.AuditLog == nil:
		c.errMsg = ProcessingFailedMessage
		c.log.WithFields(fields).Error("processing failed: empty result")
	default:
		c.result = c.outcome.result
		c.errMsg = ""
		c.log.WithFields(fields).WithField("detections", c.result.AuditLog.TotalDetections()).Info("processing finished")
	}
	c.endRun()
	return nil
}

// endRun clears every trace of the current run. It runs on every exit path.
func (c *Controller) endRun() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.run++
	c.inProgress = false
	c.stage = models.StageIdle
	c.outcome = resultMsg{}
}

func detect(ctx context.Context, service DetectionService, file models.SelectedFile, run uint64) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if v := recover(); v != nil {
				msg = resultMsg{run: run, err: fmt.Errorf("detection service panicked: %v", v)}
			}
		}()
		result, err := service.Detect(ctx, file)
		return resultMsg{run: run, result: result, err: err}
	}
}

func (c *Controller) State() State {
	switch {
	case c.file == nil:
		return StateNoFile
	case c.inProgress:
		return StateProcessing
	case c.result != nil:
		return StateSucceeded
	case c.errMsg != "":
		return StateFailed
	default:
		return StateFileSelected
	}
}

// File returns the selected file, or nil.
func (c *Controller) File() *models.SelectedFile { return c.file }

func (c *Controller) Stage() models.ProcessingStage { return c.stage }

func (c *Controller) InProgress() bool { return c.inProgress }

// Result returns the stored detection result, or nil.
func (c *Controller) Result() *models.DetectionResult { return c.result }

// Err returns the pending user-facing error message, or "".
func (c *Controller) Err() string { return c.errMsg }

func (c *Controller) DetailsExpanded() bool { return c.details }

// CanStart reports whether the start action is enabled.
func (c *Controller) CanStart() bool {
	return c.file != nil && !c.inProgress
}

// CanExport reports whether the export action is enabled.
func (c *Controller) CanExport() bool {
	return c.result != nil && c.result.AuditLog != nil
}

// TotalDetections is the displayed count of text plus visual findings.
func (c *Controller) TotalDetections() int {
	if !c.CanExport() {
		return 0
	}
	return c.result.AuditLog.TotalDetections()
}
