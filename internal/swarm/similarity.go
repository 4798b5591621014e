package swarm

import (
	"math"
	"sort"

	"github.com/quitswarm/quitswarm/internal/memory"
)

const (
	// similarityThreshold discards candidate cases below this score.
	similarityThreshold = 0.35

	// DefaultTopSimilar is the default number of similar cases retrieved.
	DefaultTopSimilar = 4
)

// SimilarCase is a prior case retrieved for the current input.
type SimilarCase struct {
	CaseID         string  `json:"case_id"`
	Similarity     float64 `json:"similarity_0_to_1"`
	Recommendation string  `json:"recommendation"`

	// WasSuccessful is set only when feedback was attached to the case.
	WasSuccessful *bool `json:"was_successful,omitempty"`
}

// Features derives the coarse similarity signature for an input.
func Features(in memory.Input) memory.CaseFeatures {
	runway := RunwayMonths(in.FinancialSituation)
	bucket := "low"
	if runway >= 8 {
		bucket = "high"
	} else if runway >= 5 {
		bucket = "medium"
	}
	return memory.CaseFeatures{
		RunwayBucket:    bucket,
		DependentsCount: in.FamilyContext.DependentsCount,
		RiskTolerance:   in.PersonalBackground.RiskTolerance,
		SkillsCount:     len(in.LinkedInContext.TopSkills),
	}
}

// FeatureSimilarity computes the 4-term weighted similarity in [0,1]:
// exact runway-bucket match, exact risk-tolerance match, and decaying
// credit for dependents and skill-count distance.
func FeatureSimilarity(left, right memory.CaseFeatures) float64 {
	score := 0.0
	if left.RunwayBucket == right.RunwayBucket {
		score += 0.35
	}
	if left.RiskTolerance == right.RiskTolerance {
		score += 0.2
	}
	depDiff := absInt(left.DependentsCount - right.DependentsCount)
	score += math.Max(0, 0.25-float64(depDiff)*0.08)
	skillDiff := absInt(left.SkillsCount - right.SkillsCount)
	score += math.Max(0, 0.2-float64(skillDiff)*0.04)
	return math.Max(0, math.Min(1, score))
}

// retrieveSimilar finds stored cases above the similarity threshold, sorted
// descending by similarity with ties kept in insertion order, truncated to
// topN. Similarity is reported at 2-decimal precision.
func retrieveSimilar(in memory.Input, cases []*memory.CaseRecord, topN int) []SimilarCase {
	if topN <= 0 {
		topN = DefaultTopSimilar
	}

	current := Features(in)
	matched := make([]SimilarCase, 0, len(cases))
	for _, c := range cases {
		sim := FeatureSimilarity(current, c.Features)
		if sim < similarityThreshold {
			continue
		}

		similar := SimilarCase{
			CaseID:         c.CaseID,
			Similarity:     round2(sim),
			Recommendation: c.Recommendation,
		}
		if c.Feedback != nil {
			wasSuccessful := c.Feedback.WasSuccessful
			similar.WasSuccessful = &wasSuccessful
		}
		matched = append(matched, similar)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Similarity > matched[j].Similarity
	})

	if len(matched) > topN {
		matched = matched[:topN]
	}
	return matched
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
