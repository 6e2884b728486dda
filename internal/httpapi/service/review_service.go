package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

// Name of the (author_id, title_id) unique constraint in the reviews table.
const reviewUniqueConstraint = "uniq_review_author_title"

type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, authorID, titleID int64, text string, score int) (*models.Review, error)
	Update(ctx context.Context, review *models.Review, text *string, score *int) (*models.Review, error)
	Delete(ctx context.Context, review *models.Review) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	scoreMin   int
	scoreMax   int
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository, scoreMin, scoreMax int) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		scoreMin:   scoreMin,
		scoreMax:   scoreMax,
	}
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Create(ctx context.Context, authorID, titleID int64, text string, score int) (*models.Review, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := s.validateScore(score); err != nil {
		return nil, err
	}

	// Fast path for the common case; the unique constraint below remains
	// the authoritative guard under concurrency.
	exists, err := s.reviewRepo.ExistsByAuthorAndTitle(ctx, authorID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &models.Review{
		Text:     text,
		Score:    score,
		AuthorID: authorID,
		TitleID:  titleID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if repository.IsUniqueViolation(err, reviewUniqueConstraint) {
			// Lost the race against a concurrent create by the same author.
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	return s.reviewRepo.GetByID(ctx, titleID, review.ID)
}

func (s *reviewService) Update(ctx context.Context, review *models.Review, text *string, score *int) (*models.Review, error) {
	if text != nil {
		review.Text = *text
	}
	if score != nil {
		if err := s.validateScore(*score); err != nil {
			return nil, err
		}
		review.Score = *score
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, review *models.Review) error {
	return s.reviewRepo.Delete(ctx, review)
}

func (s *reviewService) validateScore(score int) error {
	if score < s.scoreMin || score > s.scoreMax {
		return NewFieldError("score", fmt.Sprintf("score must be between %d and %d", s.scoreMin, s.scoreMax))
	}
	return nil
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
