package service

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/platewise/backend/internal/model"
)

// ErrAnalysisInProgress is returned when StartAnalysis is called while a
// previous attempt on the same session has not reached a terminal outcome.
// The second call is rejected and leaves the session state untouched.
var ErrAnalysisInProgress = errors.New("analysis already in progress")

// Analyzer is the single operation the session needs from the inference
// layer.
type Analyzer interface {
	Analyze(ctx context.Context, img image.Image) (*model.AnalysisResponse, error)
}

// SessionState is a consistent snapshot of the observable session fields.
type SessionState struct {
	InProgress bool
	Err        error
	Result     *model.AnalysisResponse
	Image      image.Image
}

// AnalysisSession orchestrates one analysis attempt end-to-end and publishes
// the terminal outcome for its caller. State transitions are strictly
// sequential: InProgress is set before the network call begins and cleared
// only after the terminal outcome is recorded.
type AnalysisSession struct {
	analyzer Analyzer

	mu         sync.Mutex
	inProgress bool
	err        error
	result     *model.AnalysisResponse
	image      image.Image
}

// NewAnalysisSession creates an idle session bound to an analyzer.
func NewAnalysisSession(analyzer Analyzer) *AnalysisSession {
	return &AnalysisSession{analyzer: analyzer}
}

// StartAnalysis runs one attempt: Idle -> InProgress -> Succeeded or Failed.
// On entry any previous outcome is cleared and the triggering image recorded.
// The analyzer is invoked exactly once; there is no cancellation primitive
// beyond the context handed to that single call. After a terminal outcome the
// session is idle again and may be restarted with a new or the same image.
func (s *AnalysisSession) StartAnalysis(ctx context.Context, img image.Image) error {
	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		return ErrAnalysisInProgress
	}
	s.inProgress = true
	s.err = nil
	s.result = nil
	s.image = img
	s.mu.Unlock()

	result, err := s.analyzer.Analyze(ctx, img)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
	} else {
		s.result = result
	}
	s.inProgress = false
	return err
}

// Snapshot returns the current observable state.
func (s *AnalysisSession) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		InProgress: s.inProgress,
		Err:        s.err,
		Result:     s.result,
		Image:      s.image,
	}
}
