package swarm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quitswarm/quitswarm/internal/memory"
)

// stubStore keeps the memory document in process so engine tests can seed
// and inspect it directly.
type stubStore struct {
	mem      *memory.Memory
	saves    int
	failSave bool
}

func newStubStore() *stubStore {
	return &stubStore{mem: memory.NewMemory()}
}

func (s *stubStore) Load() *memory.Memory { return s.mem }

func (s *stubStore) Save(m *memory.Memory) error {
	if s.failSave {
		return memory.ErrPersist
	}
	s.saves++
	s.mem = m
	return nil
}

func (s *stubStore) Path() string { return "stub" }

// stubRecorder captures journal calls.
type stubRecorder struct {
	decisions []string
	feedbacks []string
}

func (r *stubRecorder) RecordDecision(caseID string, score int, recommendation string, at time.Time) {
	r.decisions = append(r.decisions, caseID)
}

func (r *stubRecorder) RecordFeedback(caseID string, didQuit, wasSuccessful bool, at time.Time) {
	r.feedbacks = append(r.feedbacks, caseID)
}

// stubRefiner returns fixed prose or a fixed error.
type stubRefiner struct {
	text string
	err  error
}

func (r *stubRefiner) RefineRecommendation(ctx context.Context, d Decision) (string, error) {
	return r.text, r.err
}

func TestDecide_EqualWeightBaseline(t *testing.T) {
	engine := NewEngine(newStubStore())

	d, err := engine.Decide(context.Background(), baseInput(), "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}

	// Specialist scores 55, 56, 72, 45 at equal weights: mean 57.
	if d.AggregateScore != 57 {
		t.Errorf("aggregate score = %d, want 57", d.AggregateScore)
	}
	// Confidences 0.82, 0.74, 0.79, 0.7: mean 0.7625 rounds to 0.76.
	if d.AggregateConfidence != 0.76 {
		t.Errorf("aggregate confidence = %v, want 0.76", d.AggregateConfidence)
	}
	if d.Recommendation != "Do not quit yet; build financial and demand stability." {
		t.Errorf("recommendation = %q", d.Recommendation)
	}
	if d.RecommendedQuitWindow != "6 to 12+ months" {
		t.Errorf("quit window = %q, want %q", d.RecommendedQuitWindow, "6 to 12+ months")
	}
	if len(d.Specialists) != 4 {
		t.Errorf("got %d specialists, want 4", len(d.Specialists))
	}
	if d.CaseID == "" {
		t.Error("expected a generated case ID")
	}
	if len(d.RedFlags) != 0 {
		t.Errorf("unexpected red flags: %v", d.RedFlags)
	}
	for _, agent := range memory.AgentNames() {
		if w := d.UsedAgentWeights[agent]; w != 1.0 {
			t.Errorf("weight[%s] = %v, want 1.0", agent, w)
		}
	}
}

func TestDecide_WeightedAggregation(t *testing.T) {
	store := newStubStore()
	store.mem.AgentWeights[memory.AgentFamily] = 2.0
	engine := NewEngine(store)

	d, err := engine.Decide(context.Background(), baseInput(), "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}

	// (55 + 56 + 72*2 + 45) / 5 = 60.
	if d.AggregateScore != 60 {
		t.Errorf("aggregate score = %d, want 60", d.AggregateScore)
	}
	// (0.82 + 0.74 + 0.79*2 + 0.7) / 5 = 0.768 rounds to 0.77.
	if d.AggregateConfidence != 0.77 {
		t.Errorf("aggregate confidence = %v, want 0.77", d.AggregateConfidence)
	}
	if d.Recommendation != "Delay quitting and de-risk execution first." {
		t.Errorf("recommendation = %q", d.Recommendation)
	}
	if d.RecommendedQuitWindow != "3 to 6 months" {
		t.Errorf("quit window = %q, want %q", d.RecommendedQuitWindow, "3 to 6 months")
	}
}

func TestDecide_SuppliedCaseID(t *testing.T) {
	store := newStubStore()
	engine := NewEngine(store)

	d, err := engine.Decide(context.Background(), baseInput(), "case-123")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if d.CaseID != "case-123" {
		t.Errorf("case ID = %q, want %q", d.CaseID, "case-123")
	}
	if store.mem.FindCase("case-123") == nil {
		t.Error("case not persisted under supplied ID")
	}
}

func TestDecide_PersistsCase(t *testing.T) {
	store := newStubStore()
	engine := NewEngine(store)

	d, err := engine.Decide(context.Background(), baseInput(), "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}

	if store.saves != 1 {
		t.Fatalf("store saved %d times, want 1", store.saves)
	}
	record := store.mem.FindCase(d.CaseID)
	if record == nil {
		t.Fatal("decision case missing from memory")
	}
	if record.AggregateScore != d.AggregateScore {
		t.Errorf("persisted score = %d, want %d", record.AggregateScore, d.AggregateScore)
	}
	if record.Recommendation != d.Recommendation {
		t.Errorf("persisted recommendation = %q, want %q", record.Recommendation, d.Recommendation)
	}
	if record.Features != Features(baseInput()) {
		t.Errorf("persisted features = %+v", record.Features)
	}
	if len(record.Specialists) != 4 {
		t.Errorf("persisted %d specialists, want 4", len(record.Specialists))
	}
	if record.Timestamp.IsZero() {
		t.Error("persisted case has zero timestamp")
	}
}

func TestDecide_ScoresIndependentOfHistorySize(t *testing.T) {
	engine := NewEngine(newStubStore())
	in := baseInput()

	// Stored cases without feedback labels never shift scores, so growth
	// of the history alone must not move the aggregate.
	first, err := engine.Decide(context.Background(), in, "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	// Seed some unrelated cases.
	for i := 0; i < 5; i++ {
		if _, err := engine.Decide(context.Background(), baseInput(), ""); err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
	}
	second, err := engine.Decide(context.Background(), in, "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}

	if first.AggregateScore != second.AggregateScore {
		t.Errorf("score drifted with history size: %d vs %d", first.AggregateScore, second.AggregateScore)
	}
	for i := range first.Specialists {
		if first.Specialists[i].Score != second.Specialists[i].Score {
			t.Errorf("%s score drifted with history size", first.Specialists[i].Agent)
		}
	}
}

func seedSimilarCase(store *stubStore, id string, in memory.Input, wasSuccessful bool) {
	record := &memory.CaseRecord{
		CaseID:         id,
		Timestamp:      time.Now().UTC(),
		Features:       Features(in),
		Recommendation: "Do not quit yet; build financial and demand stability.",
	}
	record.Feedback = &memory.Feedback{
		CaseID:        id,
		DidUserQuit:   true,
		WasSuccessful: wasSuccessful,
	}
	store.mem.AppendCase(record)
}

func TestDecide_SimilarSuccessShiftsScoreUp(t *testing.T) {
	store := newStubStore()
	in := baseInput()
	seedSimilarCase(store, "prior-1", in, true)
	seedSimilarCase(store, "prior-2", in, true)
	engine := NewEngine(store)

	d, err := engine.Decide(context.Background(), in, "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}

	// Base 57 plus the +4 success shift.
	if d.AggregateScore != 61 {
		t.Errorf("aggregate score = %d, want 61", d.AggregateScore)
	}
	if d.Recommendation != "Delay quitting and de-risk execution first." {
		t.Errorf("recommendation = %q", d.Recommendation)
	}
	if len(d.SimilarCases) != 2 {
		t.Errorf("got %d similar cases, want 2", len(d.SimilarCases))
	}

	found := false
	for _, line := range d.Rationale {
		if strings.Contains(line, "success rate is 100%") && strings.Contains(line, "shifting score by 4") {
			found = true
		}
	}
	if !found {
		t.Errorf("rationale missing success-rate line: %v", d.Rationale)
	}
}

func TestDecide_SimilarFailureShiftsScoreDown(t *testing.T) {
	store := newStubStore()
	in := baseInput()
	seedSimilarCase(store, "prior-1", in, false)
	seedSimilarCase(store, "prior-2", in, false)
	engine := NewEngine(store)

	d, err := engine.Decide(context.Background(), in, "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if d.AggregateScore != 53 {
		t.Errorf("aggregate score = %d, want 53", d.AggregateScore)
	}
}

func TestDecide_SingleLabelDoesNotShift(t *testing.T) {
	store := newStubStore()
	in := baseInput()
	seedSimilarCase(store, "prior-1", in, true)
	engine := NewEngine(store)

	d, err := engine.Decide(context.Background(), in, "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	// One label is below the two-label minimum: no shift, but the
	// rationale still reports the observed rate.
	if d.AggregateScore != 57 {
		t.Errorf("aggregate score = %d, want 57", d.AggregateScore)
	}
	found := false
	for _, line := range d.Rationale {
		if strings.Contains(line, "shifting score by 0") {
			found = true
		}
	}
	if !found {
		t.Errorf("rationale missing zero-shift line: %v", d.Rationale)
	}
}

func TestDecide_RedFlags(t *testing.T) {
	in := baseInput()
	in.FinancialSituation.LiquidSavingsUSD = 10000 // 2.5 months runway
	in.FinancialSituation.HealthInsuranceIfQuit = false
	in.FamilyContext.DependentsCount = 2
	in.FamilyContext.PartnerIncomeStable = false
	in.LinkedInContext.TopSkills = []string{"Writing"}

	engine := NewEngine(newStubStore())
	d, err := engine.Decide(context.Background(), in, "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}

	want := []string{
		"Runway below 4 months.",
		"Dependents with unstable partner income.",
		"No health insurance continuity.",
		"Weak LinkedIn skills proof for market transition.",
	}
	if len(d.RedFlags) != len(want) {
		t.Fatalf("got %d red flags %v, want %d", len(d.RedFlags), d.RedFlags, len(want))
	}
	for i := range want {
		if d.RedFlags[i] != want[i] {
			t.Errorf("red flag %d = %q, want %q", i, d.RedFlags[i], want[i])
		}
	}
}

func TestDecide_ActionPlanVariants(t *testing.T) {
	engine := NewEngine(newStubStore())

	t.Run("comfortable profile", func(t *testing.T) {
		d, err := engine.Decide(context.Background(), baseInput(), "")
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		plan := d.ActionPlan
		if len(plan.Next30Days) != 3 {
			t.Errorf("next-30-days has %d items, want 3", len(plan.Next30Days))
		}
		if len(plan.BeforeQuitting) != 2 {
			t.Errorf("before-quitting has %d items, want 2: %v", len(plan.BeforeQuitting), plan.BeforeQuitting)
		}
		if len(plan.First90DaysAfterQuit) != 3 {
			t.Errorf("post-quit has %d items, want 3: %v", len(plan.First90DaysAfterQuit), plan.First90DaysAfterQuit)
		}
		if !strings.Contains(plan.First90DaysAfterQuit[2], "bi-weekly") {
			t.Errorf("household cadence = %q, want bi-weekly", plan.First90DaysAfterQuit[2])
		}
	})

	t.Run("strained profile", func(t *testing.T) {
		in := baseInput()
		in.FinancialSituation.LiquidSavingsUSD = 10000 // short runway
		in.FinancialSituation.HealthInsuranceIfQuit = false
		in.FamilyContext.DependentsCount = 1

		d, err := engine.Decide(context.Background(), in, "")
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		plan := d.ActionPlan

		if plan.BeforeQuitting[0] != "Increase liquid runway to at least 6 months before resigning." {
			t.Errorf("runway gate not prepended: %v", plan.BeforeQuitting)
		}
		last := plan.BeforeQuitting[len(plan.BeforeQuitting)-1]
		if last != "Secure health insurance continuity plan before giving notice." {
			t.Errorf("insurance item not appended: %v", plan.BeforeQuitting)
		}
		cadence := plan.First90DaysAfterQuit[2]
		if !strings.Contains(cadence, "weekly") || strings.Contains(cadence, "bi-weekly") {
			t.Errorf("household cadence = %q, want weekly", cadence)
		}
		fallback := plan.First90DaysAfterQuit[len(plan.First90DaysAfterQuit)-1]
		if !strings.Contains(fallback, "fallback path") {
			t.Errorf("low score did not add fallback item: %v", plan.First90DaysAfterQuit)
		}
	})
}

func TestDecide_RefinerRewritesProseOnly(t *testing.T) {
	store := newStubStore()
	engine := NewEngine(store)
	engine.SetRefiner(&stubRefiner{text: "A tighter read: keep building before you resign."})

	d, err := engine.Decide(context.Background(), baseInput(), "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if d.Recommendation != "A tighter read: keep building before you resign." {
		t.Errorf("recommendation = %q, want refined text", d.Recommendation)
	}
	// The persisted case keeps the deterministic text.
	record := store.mem.FindCase(d.CaseID)
	if record.Recommendation != "Do not quit yet; build financial and demand stability." {
		t.Errorf("persisted recommendation = %q, want deterministic text", record.Recommendation)
	}
	if d.AggregateScore != 57 {
		t.Errorf("refiner changed the score: %d", d.AggregateScore)
	}
}

func TestDecide_RefinerFailureFallsBack(t *testing.T) {
	engine := NewEngine(newStubStore())
	engine.SetRefiner(&stubRefiner{err: errors.New("api unavailable")})

	d, err := engine.Decide(context.Background(), baseInput(), "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if d.Recommendation != "Do not quit yet; build financial and demand stability." {
		t.Errorf("recommendation = %q, want deterministic fallback", d.Recommendation)
	}
}

func TestDecide_PersistFailurePropagates(t *testing.T) {
	store := newStubStore()
	store.failSave = true
	engine := NewEngine(store)

	_, err := engine.Decide(context.Background(), baseInput(), "")
	if !errors.Is(err, memory.ErrPersist) {
		t.Errorf("error = %v, want ErrPersist", err)
	}
}

func TestDecide_NotifiesRecorder(t *testing.T) {
	recorder := &stubRecorder{}
	engine := NewEngine(newStubStore())
	engine.SetRecorder(recorder)

	d, err := engine.Decide(context.Background(), baseInput(), "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if len(recorder.decisions) != 1 || recorder.decisions[0] != d.CaseID {
		t.Errorf("recorder decisions = %v, want [%s]", recorder.decisions, d.CaseID)
	}
}

func TestEngine_Accessors(t *testing.T) {
	store := newStubStore()
	store.mem.AgentWeights[memory.AgentFinance] = 1.23456
	store.mem.AgentScorecard[memory.AgentFinance] = &memory.Scorecard{Correct: 3, Total: 4}
	engine := NewEngine(store)

	if w := engine.Weights()[memory.AgentFinance]; w != 1.235 {
		t.Errorf("Weights() finance = %v, want 1.235", w)
	}
	card := engine.Scorecard()[memory.AgentFinance]
	if card.Correct != 3 || card.Total != 4 {
		t.Errorf("Scorecard() finance = %+v", card)
	}
	if n := len(engine.Cases()); n != 0 {
		t.Errorf("Cases() = %d records, want 0", n)
	}
}
