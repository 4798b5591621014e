/*
Package swarm implements the swarm decision engine: four deterministic
specialist scorers, a similarity-based case retriever, the weighted
coordinator that blends them into a decision, and the feedback learner
that nudges specialist weights from outcome reports.

The engine's only external state is a memory.Store; everything else is
pure computation bounded by fixed small constants.
*/
package swarm

import (
	"fmt"

	"github.com/quitswarm/quitswarm/internal/memory"
)

// NetBurn is the monthly expense load after side and investment income
// offsets, floored at 1.0 USD to keep runway division well-defined.
func NetBurn(fin memory.FinancialSituation) float64 {
	offsets := fin.ExpectedSideIncomeUSD + fin.ExpectedInvestmentMonthlyIncomeUSD
	burn := fin.MonthlyExpensesUSD - offsets
	if burn < 1.0 {
		return 1.0
	}
	return burn
}

// RunwayMonths is liquid savings divided by net monthly burn.
func RunwayMonths(fin memory.FinancialSituation) float64 {
	return fin.LiquidSavingsUSD / NetBurn(fin)
}

// ScoreFinance assesses financial readiness: runway tier, debt load,
// investment buffer, and insurance continuity.
func ScoreFinance(in memory.Input) memory.SpecialistAssessment {
	fin := in.FinancialSituation
	runway := RunwayMonths(fin)
	score := 35
	reasons := []string{fmt.Sprintf("Runway is %.1f months.", runway)}

	switch {
	case runway >= 12:
		score += 35
		reasons = append(reasons, "Runway exceeds 12 months.")
	case runway >= 6:
		score += 20
		reasons = append(reasons, "Runway is above 6 months.")
	case runway >= 4:
		score += 10
		reasons = append(reasons, "Runway is borderline safe.")
	default:
		score -= 15
		reasons = append(reasons, "Runway is high risk (<4 months).")
	}

	if fin.DebtUSD > fin.MonthlyExpensesUSD*12 {
		score -= 10
		reasons = append(reasons, "Debt load is heavy against expense profile.")
	}
	if fin.OtherInvestmentsUSD >= fin.MonthlyExpensesUSD*8 {
		score += 7
		reasons = append(reasons, "Investment portfolio provides additional safety buffer.")
	}
	if !fin.HealthInsuranceIfQuit {
		score -= 12
		reasons = append(reasons, "No health insurance continuity after quitting.")
	}

	score = clampScore(score)
	return memory.SpecialistAssessment{
		Agent:      memory.AgentFinance,
		Score:      score,
		Confidence: 0.82,
		Verdict:    verdictFor(score, 72, 50),
		Reasons:    reasons,
	}
}

// ScoreMarket assesses career-market readiness from skills, network reach,
// endorsements, and posting activity.
func ScoreMarket(in memory.Input) memory.SpecialistAssessment {
	link := in.LinkedInContext
	score := 30 + minInt(len(link.TopSkills), 8)*4
	reasons := []string{fmt.Sprintf("Detected %d core skills on LinkedIn context.", len(link.TopSkills))}

	switch link.NetworkReach {
	case "large":
		score += 20
		reasons = append(reasons, "Large network improves opportunity discovery.")
	case "medium":
		score += 10
	default:
		score -= 5
		reasons = append(reasons, "Small network may slow initial traction.")
	}

	switch link.EndorsementsStrength {
	case "strong":
		score += 12
	case "weak":
		score -= 8
		reasons = append(reasons, "Weak endorsements reduce social proof.")
	}

	if link.RecentRelevantPosts >= 6 {
		score += 8
	} else if link.RecentRelevantPosts == 0 {
		score -= 7
		reasons = append(reasons, "No recent proof-of-work content.")
	}

	score = clampScore(score)
	return memory.SpecialistAssessment{
		Agent:      memory.AgentMarket,
		Score:      score,
		Confidence: 0.74,
		Verdict:    verdictFor(score, 70, 48),
		Reasons:    reasons,
	}
}

// ScoreFamily assesses household stability: dependents, partner income,
// family support, and the runway-with-dependents red zone.
func ScoreFamily(in memory.Input) memory.SpecialistAssessment {
	fam := in.FamilyContext
	runway := RunwayMonths(in.FinancialSituation)
	score := 55
	var reasons []string

	switch {
	case fam.DependentsCount >= 2:
		score -= 15
		reasons = append(reasons, "2+ dependents increase household risk tolerance requirements.")
	case fam.DependentsCount == 1:
		score -= 8
		reasons = append(reasons, "Single dependent requires stronger safety margin.")
	default:
		score += 5
	}

	if fam.PartnerIncomeStable {
		score += 12
		reasons = append(reasons, "Partner income adds household resilience.")
	} else {
		score -= 10
		reasons = append(reasons, "No stable partner income buffer.")
	}

	switch fam.FamilySupportLevel {
	case "high":
		score += 8
	case "low":
		score -= 8
		reasons = append(reasons, "Low family support can raise execution pressure.")
	}

	if runway < 6 && fam.DependentsCount > 0 {
		score -= 12
		reasons = append(reasons, "Runway below 6 months with dependents is a red-zone setup.")
	}

	if len(reasons) == 0 {
		reasons = []string{"Household context is manageable for transition."}
	}

	score = clampScore(score)
	return memory.SpecialistAssessment{
		Agent:      memory.AgentFamily,
		Score:      score,
		Confidence: 0.79,
		Verdict:    verdictFor(score, 72, 52),
		Reasons:    reasons,
	}
}

// ScoreLinkedIn assesses inbound-lead positioning: skill breadth, posting
// cadence, endorsements, and network size.
func ScoreLinkedIn(in memory.Input) memory.SpecialistAssessment {
	link := in.LinkedInContext
	score := 25 + minInt(len(link.TopSkills), 10)*5
	reasons := []string{"LinkedIn positioning influences inbound lead generation for transition runway."}

	if link.RecentRelevantPosts >= 8 {
		score += 15
		reasons = append(reasons, "Strong recent posting cadence.")
	} else if link.RecentRelevantPosts < 2 {
		score -= 8
		reasons = append(reasons, "Low posting cadence weakens discovery momentum.")
	}

	switch link.EndorsementsStrength {
	case "strong":
		score += 10
	case "weak":
		score -= 10
	}

	switch link.NetworkReach {
	case "large":
		score += 10
	case "small":
		score -= 6
	}

	score = clampScore(score)
	return memory.SpecialistAssessment{
		Agent:      memory.AgentLinkedIn,
		Score:      score,
		Confidence: 0.7,
		Verdict:    verdictFor(score, 68, 45),
		Reasons:    reasons,
	}
}

// RunSpecialists evaluates all four specialists. They are independent pure
// functions, so order is irrelevant.
func RunSpecialists(in memory.Input) []memory.SpecialistAssessment {
	return []memory.SpecialistAssessment{
		ScoreFinance(in),
		ScoreMarket(in),
		ScoreFamily(in),
		ScoreLinkedIn(in),
	}
}

// verdictFor applies a specialist's two-cut go/wait/hold classifier.
func verdictFor(score, goCut, waitCut int) string {
	if score >= goCut {
		return memory.VerdictGo
	}
	if score >= waitCut {
		return memory.VerdictWait
	}
	return memory.VerdictHold
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
