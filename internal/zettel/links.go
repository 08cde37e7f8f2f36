package zettel

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/starford/zettel/internal/apperr"
	"github.com/starford/zettel/internal/codec"
	"github.com/starford/zettel/internal/models"
	"github.com/starford/zettel/internal/store"
)

// Link directions accepted by LinkedNotes.
const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
	DirectionBoth     = "both"
)

// CreateLinkInput holds the arguments for CreateLink.
type CreateLinkInput struct {
	SourceID      string
	TargetID      string
	LinkType      models.LinkType
	Description   string
	Bidirectional bool
}

// LinkResult is the success value of CreateLink. Both endpoint notes are
// returned for caller convenience. InverseCreated reports whether the
// mirrored record landed; its failure is a warning, never an error.
type LinkResult struct {
	SourceNote     models.Note     `json:"source_note"`
	TargetNote     models.Note     `json:"target_note"`
	LinkType       models.LinkType `json:"link_type"`
	InverseCreated bool            `json:"inverse_created,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// RemoveLinkInput holds the arguments for RemoveLink. LinkType narrows the
// delete to one type when set; empty removes every type between the pair.
type RemoveLinkInput struct {
	SourceID      string
	TargetID      string
	LinkType      models.LinkType
	Bidirectional bool
}

// CreateLink writes a directed link after confirming both notes exist. When
// bidirectional, a second record with the inverse type is written
// target-to-source. The two existence checks and the writes are not
// transactional (see the package comment).
func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (*LinkResult, error) {
	in.LinkType = normalizeLinkType(in.LinkType)
	if err := validateLink(in.SourceID, in.TargetID, in.LinkType); err != nil {
		return nil, err
	}

	source, err := s.GetNote(ctx, in.SourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.GetNote(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}

	payload := codec.LinkPayload(in.SourceID, in.TargetID, in.LinkType, in.Description)
	if _, err := s.store.Post(ctx, "/links", payload, nil); err != nil {
		return nil, err
	}

	result := &LinkResult{
		SourceNote: *source,
		TargetNote: *target,
		LinkType:   in.LinkType,
	}

	if in.Bidirectional {
		inverse := models.InverseLinkType(in.LinkType)
		inversePayload := codec.LinkPayload(in.TargetID, in.SourceID, inverse, in.Description)
		if _, err := s.store.Post(ctx, "/links", inversePayload, nil); err != nil {
			s.logger.Warn("inverse link creation failed",
				slog.String("source", in.TargetID), slog.String("target", in.SourceID),
				slog.String("error", err.Error()))
			result.Warnings = append(result.Warnings, "inverse link creation failed: "+err.Error())
		} else {
			result.InverseCreated = true
		}
	}

	s.logger.Info("link created",
		slog.String("source", in.SourceID), slog.String("target", in.TargetID),
		slog.String("type", string(in.LinkType)), slog.Bool("bidirectional", in.Bidirectional))
	return result, nil
}

// RemoveLink deletes links by exact (source, target[, type]) match. When
// bidirectional, the mirrored delete is attempted too; removing a link that
// was only ever created one-directionally is not an error.
func (s *Service) RemoveLink(ctx context.Context, in RemoveLinkInput) (*DeleteResult, error) {
	if strings.TrimSpace(in.SourceID) == "" || strings.TrimSpace(in.TargetID) == "" {
		return nil, apperr.Validationf("source id and target id are required")
	}
	if in.LinkType != "" {
		in.LinkType = normalizeLinkType(in.LinkType)
		if !models.ValidLinkType(in.LinkType) {
			return nil, apperr.Validationf("invalid link type %q, must be one of: %s", in.LinkType, linkTypeList())
		}
	}

	if _, err := s.store.Delete(ctx, "/links", linkMatchParams(in.SourceID, in.TargetID, in.LinkType)); err != nil {
		return nil, err
	}

	if in.Bidirectional {
		if _, err := s.store.Delete(ctx, "/links", linkMatchParams(in.TargetID, in.SourceID, in.LinkType)); err != nil {
			s.logger.Debug("mirrored link removal failed",
				slog.String("source", in.TargetID), slog.String("target", in.SourceID),
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("link removed",
		slog.String("source", in.SourceID), slog.String("target", in.TargetID))
	return &DeleteResult{Message: "link removed successfully"}, nil
}

// LinkedNotes returns the notes connected to noteID in the given direction.
// The other endpoint of each link is collected into a deduplicated set that
// always excludes noteID itself, then resolved note by note; links whose
// endpoint no longer resolves are skipped.
func (s *Service) LinkedNotes(ctx context.Context, noteID, direction string) ([]models.Note, error) {
	if strings.TrimSpace(noteID) == "" {
		return nil, apperr.Validationf("note id is required")
	}
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction == "" {
		direction = DirectionOutgoing
	}

	var params url.Values
	switch direction {
	case DirectionOutgoing:
		params = store.Params("source_id", store.Eq(noteID))
	case DirectionIncoming:
		params = store.Params("target_id", store.Eq(noteID))
	case DirectionBoth:
		params = store.Params("or", "(source_id.eq."+noteID+",target_id.eq."+noteID+")")
	default:
		return nil, apperr.Validationf("direction must be %q, %q, or %q",
			DirectionOutgoing, DirectionIncoming, DirectionBoth)
	}

	raw, err := s.store.Get(ctx, "/links", params)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var otherIDs []string
	for _, link := range codec.DecodeLinks(raw) {
		for _, id := range []string{link.SourceID, link.TargetID} {
			if id == noteID || id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			otherIDs = append(otherIDs, id)
		}
	}

	notes := make([]models.Note, 0, len(otherIDs))
	for _, id := range otherIDs {
		note, err := s.GetNote(ctx, id)
		if err != nil {
			s.logger.Debug("skipping unresolvable link endpoint",
				slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		notes = append(notes, *note)
	}
	return notes, nil
}

func linkMatchParams(sourceID, targetID string, linkType models.LinkType) url.Values {
	params := store.Params(
		"source_id", store.Eq(sourceID),
		"target_id", store.Eq(targetID),
	)
	if linkType != "" {
		params.Set("link_type", store.Eq(string(linkType)))
	}
	return params
}

func validateLink(sourceID, targetID string, linkType models.LinkType) error {
	if strings.TrimSpace(sourceID) == "" || strings.TrimSpace(targetID) == "" {
		return apperr.Validationf("source id and target id are required")
	}
	if sourceID == targetID {
		return apperr.Validationf("source and target note ids must be different")
	}
	if !models.ValidLinkType(linkType) {
		return apperr.Validationf("invalid link type %q, must be one of: %s", linkType, linkTypeList())
	}
	return nil
}

func normalizeLinkType(t models.LinkType) models.LinkType {
	if t == "" {
		return models.LinkReference
	}
	return models.LinkType(strings.ToLower(string(t)))
}

func linkTypeList() string {
	parts := make([]string, len(models.LinkTypes))
	for i, t := range models.LinkTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
