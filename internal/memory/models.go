/*
Package memory provides the persisted data models for the swarm decision
engine: the validated input record, specialist assessments, case records,
outcome feedback, and the agent weight/scorecard tables.

All structs carry snake_case JSON tags matching the on-disk schema of the
swarm memory document, so a persisted store round-trips byte-compatibly.
*/
package memory

import "time"

// Specialist agent identifiers used as keys in the weight table,
// the scorecard, and persisted assessments.
const (
	AgentFinance  = "finance_risk_agent"
	AgentMarket   = "career_market_agent"
	AgentFamily   = "family_stability_agent"
	AgentLinkedIn = "linkedin_positioning_agent"
)

// AgentNames lists all specialist identifiers in panel order.
func AgentNames() []string {
	return []string{AgentFinance, AgentMarket, AgentFamily, AgentLinkedIn}
}

// Verdict values a specialist can return.
const (
	VerdictGo   = "go"
	VerdictWait = "wait"
	VerdictHold = "hold"
)

// PersonalBackground describes the person's career context.
type PersonalBackground struct {
	Age             int     `json:"age"`
	CurrentRole     string  `json:"current_role"`
	YearsExperience float64 `json:"years_experience"`
	Location        string  `json:"location"`

	// RiskTolerance is one of "low", "medium", or "high".
	RiskTolerance string `json:"risk_tolerance"`

	CareerGoal12Months string `json:"career_goal_12_months"`
}

// LinkedInContext describes professional-network positioning.
type LinkedInContext struct {
	ProfileURL string `json:"profile_url,omitempty"`

	// TopSkills is an order-preserving list of unique skill names.
	TopSkills []string `json:"top_skills"`

	// EndorsementsStrength is one of "weak", "moderate", or "strong".
	EndorsementsStrength string `json:"endorsements_strength"`

	// NetworkReach is one of "small", "medium", or "large".
	NetworkReach string `json:"network_reach"`

	RecentRelevantPosts int `json:"recent_relevant_posts"`
}

// FinancialSituation describes the monthly cash position. All monetary
// fields are non-negative USD amounts.
type FinancialSituation struct {
	MonthlyExpensesUSD                 float64 `json:"monthly_expenses_usd"`
	MonthlyIncomeUSD                   float64 `json:"monthly_income_usd"`
	LiquidSavingsUSD                   float64 `json:"liquid_savings_usd"`
	DebtUSD                            float64 `json:"debt_usd"`
	ExpectedSideIncomeUSD              float64 `json:"expected_side_income_usd"`
	OtherInvestmentsUSD                float64 `json:"other_investments_usd"`
	ExpectedInvestmentMonthlyIncomeUSD float64 `json:"expected_investment_monthly_income_usd"`
	HealthInsuranceIfQuit              bool    `json:"health_insurance_if_quit"`
}

// FamilyContext describes the household situation.
type FamilyContext struct {
	DependentsCount     int  `json:"dependents_count"`
	PartnerIncomeStable bool `json:"partner_income_stable"`

	// FamilySupportLevel is one of "low", "medium", or "high".
	FamilySupportLevel string `json:"family_support_level"`

	MajorEventsNext12Months []string `json:"major_events_next_12_months"`
}

// Input is the validated due-diligence record the engine scores.
// Callers validate it before it reaches the core; the core never
// re-validates.
type Input struct {
	PersonalBackground PersonalBackground `json:"personal_background"`
	LinkedInContext    LinkedInContext    `json:"linkedin_context"`
	FinancialSituation FinancialSituation `json:"financial_situation"`
	FamilyContext      FamilyContext      `json:"family_context"`
}

// SpecialistAssessment is one specialist's stance on an input.
type SpecialistAssessment struct {
	Agent      string   `json:"agent"`
	Score      int      `json:"score_0_to_100"`
	Confidence float64  `json:"confidence_0_to_1"`
	Verdict    string   `json:"verdict"`
	Reasons    []string `json:"reasons"`
}

// CaseFeatures is the coarse 4-field signature used only for similarity
// comparison between cases; it is never used for scoring.
type CaseFeatures struct {
	// RunwayBucket is "high" (>=8 months), "medium" (>=5), or "low".
	RunwayBucket    string `json:"runway_bucket"`
	DependentsCount int    `json:"dependents_count"`
	RiskTolerance   string `json:"risk_tolerance"`
	SkillsCount     int    `json:"skills_count"`
}

// Feedback is an outcome report for a previously decided case.
type Feedback struct {
	CaseID         string   `json:"case_id"`
	DidUserQuit    bool     `json:"did_user_quit"`
	WasSuccessful  bool     `json:"was_successful"`
	MonthsAfterQuit *int    `json:"months_after_quit,omitempty"`
	StressScore    *int     `json:"stress_score_1_to_10,omitempty"`
	IncomeDeltaUSD *float64 `json:"income_delta_usd,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// CaseRecord is one persisted decision. Records are append-only; the only
// later mutation is attaching a feedback report exactly once.
type CaseRecord struct {
	CaseID              string                 `json:"case_id"`
	Timestamp           time.Time              `json:"timestamp"`
	Features            CaseFeatures           `json:"features"`
	Specialists         []SpecialistAssessment `json:"specialists"`
	Recommendation      string                 `json:"recommendation"`
	AggregateScore      int                    `json:"aggregate_score"`
	AggregateConfidence float64                `json:"aggregate_confidence"`
	Input               Input                  `json:"input"`
	Feedback            *Feedback              `json:"feedback,omitempty"`
}

// Scorecard accumulates how often a specialist's verdict matched reality.
// Counts only advance when feedback says the user actually quit.
type Scorecard struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}
