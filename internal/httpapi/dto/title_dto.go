package dto

import "reviewhub/internal/httpapi/models"

// CreateTitleDTO carries genre and category references as slugs, the way the
// public API addresses them.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" binding:"required,min=1"`
	Category    *string  `json:"category"`
}

// UpdateTitleDTO is a partial patch: nil fields stay untouched.
type UpdateTitleDTO struct {
	Name        *string   `json:"name" binding:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre" binding:"omitempty,min=1"`
	Category    *string   `json:"category"`
}

// TitleListQuery binds the title list filters.
type TitleListQuery struct {
	PageQuery
	Genre    string `form:"genre"`
	Category string `form:"category"`
	Year     *int   `form:"year"`
	Name     string `form:"name"`
}

// TitleResponse nests the resolved category and genres plus the computed
// rating. Rating is null when the title has no reviews.
type TitleResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Year        int              `json:"year"`
	Rating      *float64         `json:"rating"`
	Description string           `json:"description"`
	Genre       []models.Genre   `json:"genre"`
	Category    *models.Category `json:"category"`
}

// FromModelToTitleResponse converts a Title model plus its computed rating.
func FromModelToTitleResponse(t *models.Title, rating *float64) *TitleResponse {
	genres := t.Genres
	if genres == nil {
		genres = []models.Genre{}
	}
	return &TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genre:       genres,
		Category:    t.Category,
	}
}
