package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

// MockCategoryRepository mocks the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

// MockGenreRepository mocks the GenreRepository interface
type MockGenreRepository struct {
	mock.Mock
}

func (m *MockGenreRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Genre), args.Get(1).(int64), args.Error(2)
}

func (m *MockGenreRepository) Create(ctx context.Context, g *models.Genre) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGenreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockGenreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func newTitleServiceForTest() (TitleService, *MockTitleRepository, *MockCategoryRepository, *MockGenreRepository) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	return NewTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo), mockTitleRepo, mockCategoryRepo, mockGenreRepo
}

func TestCreateTitle_Success(t *testing.T) {
	titles, mockTitleRepo, mockCategoryRepo, mockGenreRepo := newTitleServiceForTest()

	category := &models.Category{ID: 2, Name: "Movies", Slug: "movies"}
	genres := []models.Genre{{ID: 1, Name: "Drama", Slug: "drama"}}
	mockGenreRepo.On("FindBySlugs", mock.Anything, []string{"drama"}).Return(genres, nil)
	mockCategoryRepo.On("FindBySlug", mock.Anything, "movies").Return(category, nil)
	mockTitleRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).Return(nil)

	slug := "movies"
	resp, err := titles.Create(context.Background(), dto.CreateTitleDTO{
		Name:     "The Long Wait",
		Year:     1994,
		Genre:    []string{"drama"},
		Category: &slug,
	})

	assert.NoError(t, err)
	assert.Equal(t, "The Long Wait", resp.Name)
	assert.Nil(t, resp.Rating)
	assert.Equal(t, "movies", resp.Category.Slug)
	mockTitleRepo.AssertExpectations(t)
}

func TestCreateTitle_YearInFuture(t *testing.T) {
	titles, mockTitleRepo, _, _ := newTitleServiceForTest()

	resp, err := titles.Create(context.Background(), dto.CreateTitleDTO{
		Name: "From The Future",
		Year: time.Now().Year() + 1,
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "year", fieldErr.Field)
	mockTitleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTitle_CurrentYearAllowed(t *testing.T) {
	titles, mockTitleRepo, _, mockGenreRepo := newTitleServiceForTest()

	mockGenreRepo.On("FindBySlugs", mock.Anything, mock.Anything).Return([]models.Genre{}, nil)
	mockTitleRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).Return(nil)

	resp, err := titles.Create(context.Background(), dto.CreateTitleDTO{
		Name: "Just Released",
		Year: time.Now().Year(),
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestCreateTitle_UnknownGenre(t *testing.T) {
	titles, mockTitleRepo, _, mockGenreRepo := newTitleServiceForTest()

	mockGenreRepo.On("FindBySlugs", mock.Anything, []string{"drama", "nope"}).
		Return([]models.Genre{{ID: 1, Slug: "drama"}}, nil)

	resp, err := titles.Create(context.Background(), dto.CreateTitleDTO{
		Name:  "Partial",
		Year:  2000,
		Genre: []string{"drama", "nope"},
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "genre", fieldErr.Field)
	mockTitleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTitle_UnknownCategory(t *testing.T) {
	titles, mockTitleRepo, mockCategoryRepo, mockGenreRepo := newTitleServiceForTest()

	mockGenreRepo.On("FindBySlugs", mock.Anything, mock.Anything).Return([]models.Genre{}, nil)
	mockCategoryRepo.On("FindBySlug", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	slug := "missing"
	resp, err := titles.Create(context.Background(), dto.CreateTitleDTO{
		Name:     "No Home",
		Year:     2000,
		Category: &slug,
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "category", fieldErr.Field)
	mockTitleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListTitles_RatingIsMeanOfScores(t *testing.T) {
	titles, mockTitleRepo, _, _ := newTitleServiceForTest()

	list := []models.Title{
		{ID: 1, Name: "Rated", Year: 1990},
		{ID: 2, Name: "Unrated", Year: 1991},
	}
	// Title 1 has reviews scoring 6 and 8.
	ratings := map[int64]float64{1: 7.0}
	mockTitleRepo.On("List", mock.Anything, repository.TitleFilter{}, 1, 10).Return(list, int64(2), nil)
	mockTitleRepo.On("Ratings", mock.Anything, []int64{1, 2}).Return(ratings, nil)

	page, err := titles.List(context.Background(), repository.TitleFilter{}, 1, 10)

	assert.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.NotNil(t, page.Data[0].Rating)
	assert.InDelta(t, 7.0, *page.Data[0].Rating, 0.001)
	assert.Nil(t, page.Data[1].Rating)
	assert.Equal(t, 2, page.Total)
	mockTitleRepo.AssertExpectations(t)
}

func TestGetTitle_NotFound(t *testing.T) {
	titles, mockTitleRepo, _, _ := newTitleServiceForTest()

	mockTitleRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	resp, err := titles.Get(context.Background(), 404)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, resp)
}

func TestUpdateTitle_ReplacesGenres(t *testing.T) {
	titles, mockTitleRepo, _, mockGenreRepo := newTitleServiceForTest()

	title := &models.Title{ID: 1, Name: "Original", Year: 1990}
	newGenres := []models.Genre{{ID: 3, Slug: "thriller"}}
	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(title, nil)
	mockTitleRepo.On("Update", mock.Anything, title).Return(nil)
	mockGenreRepo.On("FindBySlugs", mock.Anything, []string{"thriller"}).Return(newGenres, nil)
	mockTitleRepo.On("ReplaceGenres", mock.Anything, title, newGenres).Return(nil)
	mockTitleRepo.On("Ratings", mock.Anything, []int64{1}).Return(map[int64]float64{}, nil)

	genreSlugs := []string{"thriller"}
	resp, err := titles.Update(context.Background(), 1, dto.UpdateTitleDTO{Genre: &genreSlugs})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	mockTitleRepo.AssertExpectations(t)
	mockGenreRepo.AssertExpectations(t)
}
