package memory

import "fmt"

// Validate checks the structural contract of an input record. Glue layers
// (CLI, HTTP) call it before handing the record to the engine; the engine
// itself assumes a valid input.
func (in *Input) Validate() error {
	pb := in.PersonalBackground
	if pb.Age < 18 || pb.Age > 90 {
		return fmt.Errorf("personal_background.age must be between 18 and 90, got %d", pb.Age)
	}
	if pb.CurrentRole == "" {
		return fmt.Errorf("personal_background.current_role is required")
	}
	if pb.YearsExperience < 0 {
		return fmt.Errorf("personal_background.years_experience must be >= 0")
	}
	if !oneOf(pb.RiskTolerance, "low", "medium", "high") {
		return fmt.Errorf("personal_background.risk_tolerance must be low, medium, or high, got %q", pb.RiskTolerance)
	}

	link := in.LinkedInContext
	if !oneOf(link.EndorsementsStrength, "weak", "moderate", "strong") {
		return fmt.Errorf("linkedin_context.endorsements_strength must be weak, moderate, or strong, got %q", link.EndorsementsStrength)
	}
	if !oneOf(link.NetworkReach, "small", "medium", "large") {
		return fmt.Errorf("linkedin_context.network_reach must be small, medium, or large, got %q", link.NetworkReach)
	}
	if link.RecentRelevantPosts < 0 {
		return fmt.Errorf("linkedin_context.recent_relevant_posts must be >= 0")
	}

	fin := in.FinancialSituation
	monetary := []struct {
		name  string
		value float64
	}{
		{"monthly_expenses_usd", fin.MonthlyExpensesUSD},
		{"monthly_income_usd", fin.MonthlyIncomeUSD},
		{"liquid_savings_usd", fin.LiquidSavingsUSD},
		{"debt_usd", fin.DebtUSD},
		{"expected_side_income_usd", fin.ExpectedSideIncomeUSD},
		{"other_investments_usd", fin.OtherInvestmentsUSD},
		{"expected_investment_monthly_income_usd", fin.ExpectedInvestmentMonthlyIncomeUSD},
	}
	for _, field := range monetary {
		if field.value < 0 {
			return fmt.Errorf("financial_situation.%s must be >= 0", field.name)
		}
	}

	fam := in.FamilyContext
	if fam.DependentsCount < 0 {
		return fmt.Errorf("family_context.dependents_count must be >= 0")
	}
	if !oneOf(fam.FamilySupportLevel, "low", "medium", "high") {
		return fmt.Errorf("family_context.family_support_level must be low, medium, or high, got %q", fam.FamilySupportLevel)
	}

	return nil
}

// Validate checks the structural contract of a feedback record.
func (f *Feedback) Validate() error {
	if f.CaseID == "" {
		return fmt.Errorf("case_id is required")
	}
	if f.MonthsAfterQuit != nil && *f.MonthsAfterQuit < 0 {
		return fmt.Errorf("months_after_quit must be >= 0")
	}
	if f.StressScore != nil && (*f.StressScore < 1 || *f.StressScore > 10) {
		return fmt.Errorf("stress_score_1_to_10 must be between 1 and 10")
	}
	return nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
