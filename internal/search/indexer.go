/*
Package search provides keyword search over the persisted case history
using an in-memory Bleve index.

This is a lookup aid for browsing past decisions; case similarity for
scoring purposes uses the swarm package's feature-signature metric, not
this index.
*/
package search

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/quitswarm/quitswarm/internal/memory"
)

// Result is one case matched by a keyword query.
type Result struct {
	CaseID         string  `json:"case_id"`
	Recommendation string  `json:"recommendation"`
	Role           string  `json:"role"`
	Score          float64 `json:"score"`
}

// Indexer manages the full-text index over case records.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
}

// NewIndexer creates an in-memory index for fast startup.
func NewIndexer() (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Indexer{bleveIndex: index}, nil
}

// buildIndexMapping creates the Bleve mapping for case documents.
func buildIndexMapping() mapping.IndexMapping {
	caseMapping := bleve.NewDocumentMapping()

	recommendationMapping := bleve.NewTextFieldMapping()
	caseMapping.AddFieldMappingsAt("recommendation", recommendationMapping)

	roleMapping := bleve.NewTextFieldMapping()
	caseMapping.AddFieldMappingsAt("role", roleMapping)

	goalMapping := bleve.NewTextFieldMapping()
	caseMapping.AddFieldMappingsAt("goal", goalMapping)

	reasonsMapping := bleve.NewTextFieldMapping()
	caseMapping.AddFieldMappingsAt("reasons", reasonsMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", caseMapping)

	return indexMapping
}

// IndexCases indexes the given case records, keyed by case identifier.
func (i *Indexer) IndexCases(cases []*memory.CaseRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()

	for _, c := range cases {
		var reasons []string
		for _, spec := range c.Specialists {
			reasons = append(reasons, spec.Reasons...)
		}

		doc := map[string]interface{}{
			"recommendation": c.Recommendation,
			"role":           c.Input.PersonalBackground.CurrentRole,
			"goal":           c.Input.PersonalBackground.CareerGoal12Months,
			"reasons":        strings.Join(reasons, " "),
		}

		if err := batch.Index(c.CaseID, doc); err != nil {
			log.Printf("Warning: failed to index case %s: %v", c.CaseID, err)
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index cases: %w", err)
	}

	return nil
}

// Search performs BM25 keyword search over indexed cases.
func (i *Indexer) Search(query string, limit int) ([]Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	searchQuery := bleve.NewMatchQuery(query)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)
	searchRequest.Fields = []string{"recommendation", "role"}

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	converted := make([]Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		recommendation, _ := hit.Fields["recommendation"].(string)
		role, _ := hit.Fields["role"].(string)

		converted = append(converted, Result{
			CaseID:         hit.ID,
			Recommendation: recommendation,
			Role:           role,
			Score:          hit.Score,
		})
	}

	return converted, nil
}

// Count returns the number of indexed cases.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}

	return nil
}
