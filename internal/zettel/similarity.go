package zettel

import (
	"context"
	"sort"

	"github.com/starford/zettel/internal/models"
)

// Fixed weights of the four similarity signals: tag overlap, outgoing-link
// overlap, and the two direct-connection indicators.
const (
	weightTags     = 0.4
	weightLinks    = 0.2
	weightIncoming = 0.2
	weightOutgoing = 0.2
)

// similarityPool bounds the candidate set to the most recent notes.
const similarityPool = 1000

// SimilarNote pairs a candidate with its similarity score.
type SimilarNote struct {
	Note       models.Note `json:"note"`
	Similarity float64     `json:"similarity"`
}

// FindSimilar ranks notes by structural overlap with the reference note:
// shared tags, shared outgoing link targets, and direct links in either
// direction. This is not vector similarity; embeddings play no part here.
//
// Cost is O(N*M) in candidates times per-candidate link fetches, which is
// acceptable only for small personal knowledge bases.
func (s *Service) FindSimilar(ctx context.Context, noteID string, threshold float64, limit int) ([]SimilarNote, error) {
	threshold = clamp01(threshold)
	if limit <= 0 {
		limit = 5
	}

	reference, err := s.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	refTags, err := s.tagIDSet(ctx, reference.ID)
	if err != nil {
		return nil, err
	}
	refLinks, err := s.outgoingIDSet(ctx, reference.ID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.ListNotes(ctx, similarityPool, 0)
	if err != nil {
		return nil, err
	}

	results := make([]SimilarNote, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == reference.ID {
			continue
		}
		candTags, err := s.tagIDSet(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		candLinks, err := s.outgoingIDSet(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}

		score := similarityScore(refTags, candTags, refLinks, candLinks, reference.ID, candidate.ID)
		if score >= threshold {
			results = append(results, SimilarNote{Note: candidate, Similarity: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// similarityScore combines the four signals, normalized by the weighted
// maximum each signal could have reached for this pair.
func similarityScore(refTags, candTags, refLinks, candLinks map[string]struct{}, refID, candID string) float64 {
	tagOverlap := float64(intersectionSize(refTags, candTags))
	linkOverlap := float64(intersectionSize(refLinks, candLinks))

	var incoming, outgoing float64
	if _, ok := refLinks[candID]; ok {
		incoming = 1
	}
	if _, ok := candLinks[refID]; ok {
		outgoing = 1
	}

	denominator := weightTags*float64(maxInt(len(refTags), len(candTags))) +
		weightLinks*float64(maxInt(len(refLinks), len(candLinks))) +
		weightIncoming + weightOutgoing
	if denominator == 0 {
		return 0
	}
	return (weightTags*tagOverlap + weightLinks*linkOverlap +
		weightIncoming*incoming + weightOutgoing*outgoing) / denominator
}

func (s *Service) tagIDSet(ctx context.Context, noteID string) (map[string]struct{}, error) {
	tags, err := s.NoteTags(ctx, noteID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t.ID] = struct{}{}
	}
	return set, nil
}

func (s *Service) outgoingIDSet(ctx context.Context, noteID string) (map[string]struct{}, error) {
	notes, err := s.LinkedNotes(ctx, noteID, DirectionOutgoing)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		set[n.ID] = struct{}{}
	}
	return set, nil
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
