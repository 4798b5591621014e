package swarm

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quitswarm/quitswarm/internal/memory"
)

// ActionPlan is the staged checklist attached to every decision.
type ActionPlan struct {
	Next30Days           []string `json:"next_30_days"`
	BeforeQuitting       []string `json:"before_quitting"`
	First90DaysAfterQuit []string `json:"first_90_days_after_quit"`
}

// Decision is the full structured output of one coordinator run.
type Decision struct {
	CaseID                string                        `json:"case_id"`
	AggregateScore        int                           `json:"aggregate_score_0_to_100"`
	AggregateConfidence   float64                       `json:"aggregate_confidence_0_to_1"`
	Recommendation        string                        `json:"recommendation"`
	RecommendedQuitWindow string                        `json:"recommended_quit_window"`
	Rationale             []string                      `json:"rationale"`
	Specialists           []memory.SpecialistAssessment `json:"specialists"`
	ActionPlan            ActionPlan                    `json:"action_plan"`
	RedFlags              []string                      `json:"red_flags"`
	UsedAgentWeights      map[string]float64            `json:"used_agent_weights"`
	SimilarCases          []SimilarCase                 `json:"similar_cases"`
}

// FeedbackResult reports the outcome of a feedback submission.
type FeedbackResult struct {
	CaseID              string             `json:"case_id"`
	Status              string             `json:"status"`
	UpdatedAgentWeights map[string]float64 `json:"updated_agent_weights"`
	Message             string             `json:"message"`
}

// Refiner optionally rewrites a decision's recommendation prose. The
// coordinator falls back to the deterministic text on any failure, and a
// refiner can never change scores, windows, or plans.
type Refiner interface {
	RefineRecommendation(ctx context.Context, d Decision) (string, error)
}

// Recorder receives decision and feedback events for out-of-band
// journaling. Implementations must not block.
type Recorder interface {
	RecordDecision(caseID string, score int, recommendation string, at time.Time)
	RecordFeedback(caseID string, didQuit, wasSuccessful bool, at time.Time)
}

// Engine is the swarm coordinator plus feedback learner, sharing one
// memory store. A single mutex serializes Decide and SubmitFeedback end to
// end, so the load-mutate-save cycle never loses updates between
// concurrent callers of the same engine.
type Engine struct {
	store      memory.Store
	refiner    Refiner
	recorder   Recorder
	topSimilar int
	mu         sync.Mutex
}

// NewEngine creates an engine backed by the given store.
func NewEngine(store memory.Store) *Engine {
	return &Engine{
		store:      store,
		topSimilar: DefaultTopSimilar,
	}
}

// SetRefiner installs an optional narrative refiner.
func (e *Engine) SetRefiner(r Refiner) {
	e.refiner = r
}

// SetRecorder installs an optional decision/feedback journal.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// SetTopSimilar overrides how many similar cases are retrieved per decision.
func (e *Engine) SetTopSimilar(n int) {
	if n > 0 {
		e.topSimilar = n
	}
}

// Decide runs the full swarm: all four specialists, weighted aggregation,
// similar-case adjustment, plan synthesis, and synchronous persistence of
// the new case. A fresh case identifier is generated unless one is
// supplied. The returned error is non-nil only when the store cannot be
// persisted.
func (e *Engine) Decide(ctx context.Context, in memory.Input, caseID string) (*Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mem := e.store.Load()
	specialists := RunSpecialists(in)

	totalWeight := 0.0
	for _, spec := range specialists {
		totalWeight += weightFor(mem.AgentWeights, spec.Agent)
	}
	if totalWeight == 0 {
		totalWeight = 1.0
	}

	weightedScore := 0.0
	weightedConf := 0.0
	for _, spec := range specialists {
		w := weightFor(mem.AgentWeights, spec.Agent)
		weightedScore += float64(spec.Score) * w
		weightedConf += spec.Confidence * w
	}
	weightedScore /= totalWeight
	weightedConf /= totalWeight

	similarCases := retrieveSimilar(in, mem.Cases, e.topSimilar)
	successRate, labeled := similarSuccessRate(similarCases)
	scoreShift := 0
	if labeled >= 2 {
		if successRate >= 0.7 {
			scoreShift = 4
		} else if successRate <= 0.4 {
			scoreShift = -4
		}
	}

	aggregateScore := clampScore(int(math.Round(weightedScore)) + scoreShift)
	aggregateConf := round2(math.Max(0, math.Min(1, weightedConf)))
	recommendation, window := decisionFromScore(aggregateScore)

	rationale := []string{
		fmt.Sprintf("Weighted swarm score: %d/100 at confidence %v.", aggregateScore, aggregateConf),
		"Coordinator combined specialist votes using historical performance weights.",
	}
	if labeled > 0 {
		rationale = append(rationale, fmt.Sprintf(
			"Similar-case success rate is %d%%, shifting score by %d.",
			int(math.Round(successRate*100)), scoreShift))
	}

	if caseID == "" {
		caseID = uuid.NewString()
	}
	now := time.Now().UTC()

	mem.AppendCase(&memory.CaseRecord{
		CaseID:              caseID,
		Timestamp:           now,
		Features:            Features(in),
		Specialists:         specialists,
		Recommendation:      recommendation,
		AggregateScore:      aggregateScore,
		AggregateConfidence: aggregateConf,
		Input:               in,
	})
	if err := e.store.Save(mem); err != nil {
		return nil, err
	}

	decision := &Decision{
		CaseID:                caseID,
		AggregateScore:        aggregateScore,
		AggregateConfidence:   aggregateConf,
		Recommendation:        recommendation,
		RecommendedQuitWindow: window,
		Rationale:             rationale,
		Specialists:           specialists,
		ActionPlan:            buildActionPlan(in, aggregateScore),
		RedFlags:              redFlags(in),
		UsedAgentWeights:      roundWeights(mem.AgentWeights, 3),
		SimilarCases:          similarCases,
	}

	if e.recorder != nil {
		e.recorder.RecordDecision(caseID, aggregateScore, recommendation, now)
	}

	// Refinement is best-effort: the persisted case keeps the
	// deterministic text and only the returned prose may change.
	if e.refiner != nil {
		refined, err := e.refiner.RefineRecommendation(ctx, *decision)
		if err != nil {
			log.Printf("Warning: narrative refinement failed, keeping deterministic text: %v", err)
		} else if refined != "" {
			decision.Recommendation = refined
		}
	}

	return decision, nil
}

// Weights returns the current weight table rounded to 3 decimals.
func (e *Engine) Weights() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return roundWeights(e.store.Load().AgentWeights, 3)
}

// Scorecard returns a copy of the per-agent accuracy scorecard.
func (e *Engine) Scorecard() map[string]memory.Scorecard {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]memory.Scorecard)
	for agent, card := range e.store.Load().AgentScorecard {
		if card != nil {
			out[agent] = *card
		}
	}
	return out
}

// Cases returns the persisted case history in insertion order.
func (e *Engine) Cases() []*memory.CaseRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Load().Cases
}

// similarSuccessRate computes the success rate across similar cases that
// carry a feedback label, and how many such labels there are.
func similarSuccessRate(cases []SimilarCase) (rate float64, labeled int) {
	successes := 0
	for _, c := range cases {
		if c.WasSuccessful == nil {
			continue
		}
		labeled++
		if *c.WasSuccessful {
			successes++
		}
	}
	if labeled == 0 {
		return 0, 0
	}
	return float64(successes) / float64(labeled), labeled
}

// decisionFromScore maps an aggregate score to the fixed recommendation
// and quit-window cuts.
func decisionFromScore(score int) (recommendation, window string) {
	if score >= 75 {
		return "Proceed with a near-term quit once checklist gates are met.", "1 to 3 months"
	}
	if score >= 58 {
		return "Delay quitting and de-risk execution first.", "3 to 6 months"
	}
	return "Do not quit yet; build financial and demand stability.", "6 to 12+ months"
}

// redFlags evaluates the independent boolean risk checks; any subset may
// fire.
func redFlags(in memory.Input) []string {
	var flags []string
	if RunwayMonths(in.FinancialSituation) < 4 {
		flags = append(flags, "Runway below 4 months.")
	}
	if in.FamilyContext.DependentsCount > 0 && !in.FamilyContext.PartnerIncomeStable {
		flags = append(flags, "Dependents with unstable partner income.")
	}
	if !in.FinancialSituation.HealthInsuranceIfQuit {
		flags = append(flags, "No health insurance continuity.")
	}
	if len(in.LinkedInContext.TopSkills) < 3 {
		flags = append(flags, "Weak LinkedIn skills proof for market transition.")
	}
	return flags
}

// buildActionPlan assembles the staged checklist. The before-quitting list
// gains a runway-extension gate below 6 months and an insurance item when
// continuity is missing; the post-quit cadence tightens with dependents
// and a fallback path is added below an aggregate score of 55.
func buildActionPlan(in memory.Input, aggregateScore int) ActionPlan {
	runway := RunwayMonths(in.FinancialSituation)
	familyCadence := "bi-weekly"
	if in.FamilyContext.DependentsCount > 0 {
		familyCadence = "weekly"
	}

	before := []string{
		"Lock at least 3 months of paid pipeline (freelance, consulting, pilots).",
		"Build monthly cash dashboard and cap burn with a hard stop threshold.",
	}
	if runway < 6 {
		before = append([]string{"Increase liquid runway to at least 6 months before resigning."}, before...)
	}
	if !in.FinancialSituation.HealthInsuranceIfQuit {
		before = append(before, "Secure health insurance continuity plan before giving notice.")
	}

	post := []string{
		"Run a weekly operating review: leads, closes, revenue, burn, and stress.",
		"Protect deep work blocks and test paid offers before scaling build effort.",
		fmt.Sprintf("Review household stress and finances on a %s cadence.", familyCadence),
	}
	if aggregateScore < 55 {
		post = append(post, "Keep a reversible fallback path: part-time role or contract buffer.")
	}

	return ActionPlan{
		Next30Days: []string{
			"Complete 10+ customer interviews and verify willingness to pay.",
			"Publish 2 proof-of-work posts weekly to strengthen inbound demand.",
			"Define a quit/no-quit gate with objective metrics (runway, pipeline, health).",
		},
		BeforeQuitting:       before,
		First90DaysAfterQuit: post,
	}
}

// weightFor looks up an agent's weight, defaulting to 1.0.
func weightFor(weights map[string]float64, agent string) float64 {
	if w, ok := weights[agent]; ok {
		return w
	}
	return 1.0
}

// roundWeights rounds every weight to the given decimal precision.
func roundWeights(weights map[string]float64, decimals int) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for agent, w := range weights {
		switch decimals {
		case 3:
			out[agent] = round3(w)
		case 4:
			out[agent] = round4(w)
		default:
			out[agent] = w
		}
	}
	return out
}
