package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/httpapi/models"
)

// MockCommentRepository mocks the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	args := m.Called(ctx, reviewID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	args := m.Called(ctx, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func TestCreateComment_Success(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	comments := NewCommentService(mockCommentRepo, mockReviewRepo)

	review := &models.Review{ID: 3, TitleID: 5}
	mockReviewRepo.On("GetByID", mock.Anything, int64(5), int64(3)).Return(review, nil)
	mockCommentRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Comment")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Comment).ID = 11
	})
	saved := &models.Comment{ID: 11, Text: "agreed", AuthorID: 2, ReviewID: 3, Author: models.User{Username: "reader"}}
	mockCommentRepo.On("GetByID", mock.Anything, int64(3), int64(11)).Return(saved, nil)

	comment, err := comments.Create(context.Background(), 2, 5, 3, "agreed")

	assert.NoError(t, err)
	assert.Equal(t, int64(11), comment.ID)
	assert.Equal(t, "reader", comment.Author.Username)
	mockCommentRepo.AssertExpectations(t)
	mockReviewRepo.AssertExpectations(t)
}

func TestCreateComment_ReviewNotUnderTitle(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	comments := NewCommentService(mockCommentRepo, mockReviewRepo)

	// The review exists but belongs to a different title, so the scoped
	// lookup misses.
	mockReviewRepo.On("GetByID", mock.Anything, int64(99), int64(3)).Return(nil, gorm.ErrRecordNotFound)

	comment, err := comments.Create(context.Background(), 2, 99, 3, "lost")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, comment)
	mockCommentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListComments_ScopedToReview(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	comments := NewCommentService(mockCommentRepo, mockReviewRepo)

	review := &models.Review{ID: 3, TitleID: 5}
	list := []models.Comment{{ID: 1, Text: "first", ReviewID: 3}}
	mockReviewRepo.On("GetByID", mock.Anything, int64(5), int64(3)).Return(review, nil)
	mockCommentRepo.On("ListByReview", mock.Anything, int64(3), 1, 20).Return(list, int64(1), nil)

	got, total, err := comments.ListByReview(context.Background(), 5, 3, 1, 20)

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.EqualValues(t, 1, total)
	mockCommentRepo.AssertExpectations(t)
}

func TestUpdateComment_TextOnly(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	comments := NewCommentService(mockCommentRepo, mockReviewRepo)

	comment := &models.Comment{ID: 11, Text: "old", AuthorID: 2, ReviewID: 3}
	mockCommentRepo.On("Update", mock.Anything, comment).Return(nil)

	newText := "edited"
	updated, err := comments.Update(context.Background(), comment, &newText)

	assert.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	mockCommentRepo.AssertExpectations(t)
}

func TestGetComment_NotFound(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	comments := NewCommentService(mockCommentRepo, mockReviewRepo)

	review := &models.Review{ID: 3, TitleID: 5}
	mockReviewRepo.On("GetByID", mock.Anything, int64(5), int64(3)).Return(review, nil)
	mockCommentRepo.On("GetByID", mock.Anything, int64(3), int64(404)).Return(nil, gorm.ErrRecordNotFound)

	comment, err := comments.Get(context.Background(), 5, 3, 404)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, comment)
}
