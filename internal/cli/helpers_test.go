package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quitswarm/quitswarm/internal/config"
	"github.com/quitswarm/quitswarm/internal/memory"
	"github.com/quitswarm/quitswarm/internal/swarm"
)

func TestResolveMemoryPath(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MemoryPath = "/from/config.json"

	got, err := resolveMemoryPath("/from/flag.json", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/from/flag.json" {
		t.Errorf("flag value not preferred: %q", got)
	}

	got, err = resolveMemoryPath("", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/from/config.json" {
		t.Errorf("config value not used: %q", got)
	}

	cfg.MemoryPath = ""
	got, err = resolveMemoryPath("", cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, err := memory.DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("default path = %q, want %q", got, want)
	}
}

func TestReadInput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	body := `{
		"personal_background": {"age": 40, "current_role": "Architect", "risk_tolerance": "low"},
		"linkedin_context": {"endorsements_strength": "strong", "network_reach": "large"},
		"financial_situation": {"monthly_expenses_usd": 3000, "liquid_savings_usd": 45000},
		"family_context": {"family_support_level": "high"}
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	in, err := readInput(path)
	if err != nil {
		t.Fatalf("readInput() error: %v", err)
	}
	if in.PersonalBackground.Age != 40 {
		t.Errorf("age = %d, want 40", in.PersonalBackground.Age)
	}
	if in.FinancialSituation.LiquidSavingsUSD != 45000 {
		t.Errorf("savings = %v, want 45000", in.FinancialSituation.LiquidSavingsUSD)
	}
}

func TestReadInput_Errors(t *testing.T) {
	if _, err := readInput(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing file succeeded, want error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readInput(path); err == nil {
		t.Error("malformed JSON succeeded, want error")
	}
}

func TestToQuitPlan(t *testing.T) {
	var in memory.Input
	in.FinancialSituation.MonthlyExpensesUSD = 4000
	in.FinancialSituation.LiquidSavingsUSD = 30000 // 7.5 months

	d := &swarm.Decision{
		AggregateScore:        57,
		Recommendation:        "Do not quit yet; build financial and demand stability.",
		RecommendedQuitWindow: "6 to 12+ months",
		Rationale:             []string{"line"},
		RedFlags:              []string{"flag"},
	}

	plan := toQuitPlan(in, d)
	if plan.RiskSummary.RunwayMonths != 7.5 {
		t.Errorf("runway = %v, want 7.5", plan.RiskSummary.RunwayMonths)
	}
	if plan.RiskSummary.ReadinessScore != 57 {
		t.Errorf("readiness = %d, want 57", plan.RiskSummary.ReadinessScore)
	}
	if plan.RecommendedQuitWindow != "6 to 12+ months" {
		t.Errorf("window = %q", plan.RecommendedQuitWindow)
	}
	if len(plan.Rationale) != 1 || len(plan.RedFlags) != 1 {
		t.Errorf("rationale/flags not carried over: %+v", plan)
	}
}

func TestBuildEngine_NoJournal(t *testing.T) {
	cfg := config.NewConfig()
	path := filepath.Join(t.TempDir(), "memory.json")

	engine, cleanup := buildEngine(path, cfg, false)
	defer cleanup()

	if engine == nil {
		t.Fatal("buildEngine() returned nil engine")
	}
	for _, w := range engine.Weights() {
		if w != 1.0 {
			t.Errorf("fresh engine weight = %v, want 1.0", w)
		}
	}
}
