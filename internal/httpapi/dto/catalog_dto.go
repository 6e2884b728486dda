package dto

// CreateCategoryDTO is shared by category and genre creation: both carry a
// display name and a unique slug.
type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

type CreateGenreDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

// CatalogSearchQuery binds the name-substring search of the category and
// genre list endpoints.
type CatalogSearchQuery struct {
	PageQuery
	Search string `form:"search"`
}
