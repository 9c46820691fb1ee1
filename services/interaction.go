package services

import (
	"concordia-courses/analytics"
	"concordia-courses/apperror"
	"concordia-courses/lookups"
	"concordia-courses/models"
	"context"
)

// InteractionService manages likes and dislikes; the counters on the
// review follow every change
type InteractionService struct {
	Interactions InteractionStore
	Reviews      ReviewStore
	Tracker      EventTracker
}

func checkTarget(target models.ReviewTarget) error {
	if target.UserID == "" || target.SubjectID() == "" {
		return apperror.ErrSubjectMissing
	}
	return nil
}

// Add saves the vote of referrer on the review; like and dislike replace each other
func (s *InteractionService) Add(ctx context.Context, referrer string, interaction *models.Interaction) (*models.InteractionCounts, error) {

	target := interaction.Target()
	if err := checkTarget(target); err != nil {
		return nil, err
	}
	if _, err := lookups.ParseInteractionKind(string(interaction.Kind)); err != nil {
		return nil, err
	}

	// only existing reviews can be voted on
	review, err := s.Reviews.FindBySubject(ctx, target.UserID, target.Type, target.SubjectID())
	if err != nil {
		return nil, err
	}

	interaction.Referrer = referrer
	if err := s.Interactions.Upsert(ctx, interaction); err != nil {
		return nil, err
	}

	counts, err := s.recount(ctx, target)
	if err != nil {
		return nil, err
	}
	counts.Kind = interaction.Kind

	if s.Tracker != nil {
		review.Likes, review.Dislikes = counts.Likes, counts.Dislikes
		s.Tracker.SaveReviewEvent(ctx, analytics.ActionVoted, review)
	}

	return counts, nil
}

// Remove revokes the vote of referrer; nothing happens when there is none
func (s *InteractionService) Remove(ctx context.Context, referrer string, target models.ReviewTarget) (*models.InteractionCounts, error) {

	if err := checkTarget(target); err != nil {
		return nil, err
	}

	deleted, err := s.Interactions.Delete(ctx, referrer, target)
	if err != nil {
		return nil, err
	}

	if deleted == 0 {
		return s.Counts(ctx, referrer, target)
	}

	return s.recount(ctx, target)
}

// Kind returns the vote of referrer, empty if none
func (s *InteractionService) Kind(ctx context.Context, referrer string, target models.ReviewTarget) (lookups.InteractionKind, error) {
	return s.Interactions.Kind(ctx, referrer, target)
}

// Counts returns the votes on a review and the vote of referrer (if given)
func (s *InteractionService) Counts(ctx context.Context, referrer string, target models.ReviewTarget) (*models.InteractionCounts, error) {

	if err := checkTarget(target); err != nil {
		return nil, err
	}

	likes, dislikes, err := s.Interactions.Count(ctx, target)
	if err != nil {
		return nil, err
	}

	counts := &models.InteractionCounts{Likes: likes, Dislikes: dislikes}
	if referrer != "" {
		if counts.Kind, err = s.Interactions.Kind(ctx, referrer, target); err != nil {
			return nil, err
		}
	}

	return counts, nil
}

// ListByReferrer returns the votes a user cast, optionally for one type and subject
func (s *InteractionService) ListByReferrer(ctx context.Context, referrer string, rt lookups.ReviewType, subjectID string) ([]models.Interaction, error) {
	return s.Interactions.ListByReferrer(ctx, referrer, rt, subjectID)
}

// DeleteForReview removes all votes on a review (review deletion)
func (s *InteractionService) DeleteForReview(ctx context.Context, target models.ReviewTarget) (int64, error) {
	return s.Interactions.DeleteForReview(ctx, target)
}

func (s *InteractionService) recount(ctx context.Context, target models.ReviewTarget) (*models.InteractionCounts, error) {

	likes, dislikes, err := s.Interactions.Count(ctx, target)
	if err != nil {
		return nil, err
	}

	if err = s.Reviews.SetCounters(ctx, target, likes, dislikes); err != nil {
		return nil, err
	}

	return &models.InteractionCounts{Likes: likes, Dislikes: dislikes}, nil
}
