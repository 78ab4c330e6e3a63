package models

import "time"

// ProcessingStage is one step of a detection run. Stages only move forward
// and a run always starts and ends at StageIdle.
type ProcessingStage int

const (
	StageIdle ProcessingStage = iota
	StageExtractingText
	StagePatternMatching
	StageEntityRecognition
	StageContextualAnalysis
	StageVisualDetection
	StageFinalizing
)

// Stages lists the non-idle stages in run order.
var Stages = []ProcessingStage{
	StageExtractingText,
	StagePatternMatching,
	StageEntityRecognition,
	StageContextualAnalysis,
	StageVisualDetection,
	StageFinalizing,
}

func (s ProcessingStage) String() string {
	switch s {
	case StageExtractingText:
		return "extracting_text"
	case StagePatternMatching:
		return "pattern_matching"
	case StageEntityRecognition:
		return "entity_recognition"
	case StageContextualAnalysis:
		return "contextual_analysis"
	case StageVisualDetection:
		return "visual_detection"
	case StageFinalizing:
		return "finalizing"
	default:
		return "idle"
	}
}

// Label is the human readable progress text.
func (s ProcessingStage) Label() string {
	switch s {
	case StageExtractingText:
		return "Extracting text content"
	case StagePatternMatching:
		return "Running regex patterns"
	case StageEntityRecognition:
		return "Recognizing named entities"
	case StageContextualAnalysis:
		return "Verifying findings in context"
	case StageVisualDetection:
		return "Detecting visual elements"
	case StageFinalizing:
		return "Generating redacted document"
	default:
		return "Idle"
	}
}

// DefaultDuration is how long the progress display holds the stage.
func (s ProcessingStage) DefaultDuration() time.Duration {
	switch s {
	case StageExtractingText:
		return 500 * time.Millisecond
	case StagePatternMatching:
		return 800 * time.Millisecond
	case StageEntityRecognition:
		return 1000 * time.Millisecond
	case StageContextualAnalysis:
		return 1200 * time.Millisecond
	case StageVisualDetection:
		return 600 * time.Millisecond
	case StageFinalizing:
		return 400 * time.Millisecond
	default:
		return 0
	}
}

// Next returns the stage after s, or StageIdle after the last one.
func (s ProcessingStage) Next() ProcessingStage {
	if s >= StageFinalizing {
		return StageIdle
	}
	return s + 1
}
