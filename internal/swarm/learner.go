package swarm

import (
	"time"

	"github.com/quitswarm/quitswarm/internal/memory"
)

const (
	// weightNudge is the multiplicative step applied per feedback event.
	weightNudge = 0.08

	// Weight table bounds. Learned weights never leave this range.
	weightFloor = 0.4
	weightCeil  = 2.5
)

// Feedback result statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// SubmitFeedback attaches an outcome report to a past case and, when the
// user actually quit, nudges each specialist's weight up or down depending
// on whether its verdict matched the outcome. No-quit outcomes carry no
// signal about verdict accuracy, so they attach without touching weights.
//
// An unknown case identifier yields a StatusError result with no mutation.
// The returned error is non-nil only when the store cannot be persisted.
func (e *Engine) SubmitFeedback(fb memory.Feedback) (*FeedbackResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mem := e.store.Load()
	target := mem.FindCase(fb.CaseID)
	if target == nil {
		return &FeedbackResult{
			CaseID:              fb.CaseID,
			Status:              StatusError,
			UpdatedAgentWeights: map[string]float64{},
			Message:             "Case not found in swarm memory.",
		}, nil
	}

	target.Feedback = &fb

	if fb.DidUserQuit {
		for _, spec := range target.Specialists {
			predictedGo := spec.Verdict == memory.VerdictGo
			correct := fb.WasSuccessful == predictedGo

			delta := weightNudge
			if !correct {
				delta = -weightNudge
			}
			old := weightFor(mem.AgentWeights, spec.Agent)
			mem.AgentWeights[spec.Agent] = round4(clampWeight(old * (1.0 + delta)))

			card := mem.AgentScorecard[spec.Agent]
			if card == nil {
				card = &memory.Scorecard{}
				mem.AgentScorecard[spec.Agent] = card
			}
			card.Total++
			if correct {
				card.Correct++
			}
		}
	}

	if err := e.store.Save(mem); err != nil {
		return nil, err
	}

	if e.recorder != nil {
		e.recorder.RecordFeedback(fb.CaseID, fb.DidUserQuit, fb.WasSuccessful, time.Now().UTC())
	}

	return &FeedbackResult{
		CaseID:              fb.CaseID,
		Status:              StatusOK,
		UpdatedAgentWeights: roundWeights(mem.AgentWeights, 3),
		Message:             "Feedback stored and swarm weights updated.",
	}, nil
}

func clampWeight(w float64) float64 {
	if w < weightFloor {
		return weightFloor
	}
	if w > weightCeil {
		return weightCeil
	}
	return w
}
