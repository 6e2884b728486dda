// Package importer bulk-loads catalog fixtures from a folder of CSV files.
// All files load inside one transaction; any bad row aborts the whole run.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/service"
)

type Importer struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// row is one CSV record keyed by header name.
type row map[string]string

type loader struct {
	file string
	load func(tx *gorm.DB, rows []row) error
}

// LoadFolder imports every known CSV found under folder. File order matters:
// referenced rows (categories, genres, users) load before the rows that
// point at them.
func (im *Importer) LoadFolder(folder string) error {
	loaders := []loader{
		{"category.csv", im.loadCategories},
		{"genre.csv", im.loadGenres},
		{"users.csv", im.loadUsers},
		{"titles.csv", im.loadTitles},
		{"genre_title.csv", im.loadGenreTitles},
		{"review.csv", im.loadReviews},
		{"comments.csv", im.loadComments},
	}

	return im.db.Transaction(func(tx *gorm.DB) error {
		for _, l := range loaders {
			path := filepath.Join(folder, l.file)
			rows, err := readCSV(path)
			if os.IsNotExist(err) {
				im.logger.Warn("csv file not found, skipping", "file", l.file)
				continue
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", l.file, err)
			}
			if err := l.load(tx, rows); err != nil {
				return fmt.Errorf("load %s: %w", l.file, err)
			}
			im.logger.Info("loaded csv file", "file", l.file, "rows", len(rows))
		}
		return resetSequences(tx)
	})
}

// resetSequences bumps the id sequences past the imported rows, since the
// CSV files carry explicit primary keys. Sequences are a Postgres notion;
// other dialects have nothing to reset.
func resetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"categories", "genres", "users", "titles", "reviews", "comments"} {
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))",
			table, table,
		)
		if err := tx.Exec(q).Error; err != nil {
			return fmt.Errorf("reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

func (im *Importer) loadCategories(tx *gorm.DB, rows []row) error {
	for _, r := range rows {
		id, err := parseInt64(r, "id")
		if err != nil {
			return err
		}
		category := models.Category{ID: id, Name: r["name"], Slug: r["slug"]}
		if err := tx.FirstOrCreate(&category, models.Category{ID: id}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) loadGenres(tx *gorm.DB, rows []row) error {
	for _, r := range rows {
		id, err := parseInt64(r, "id")
		if err != nil {
			return err
		}
		genre := models.Genre{ID: id, Name: r["name"], Slug: r["slug"]}
		if err := tx.FirstOrCreate(&genre, models.Genre{ID: id}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) loadUsers(tx *gorm.DB, rows []row) error {
	for _, r := range rows {
		id, err := parseInt64(r, "id")
		if err != nil {
			return err
		}
		if err := service.ValidateUsername(r["username"]); err != nil {
			return fmt.Errorf("user %d: %w", id, err)
		}
		role, err := models.ParseRole(r["role"])
		if err != nil {
			return fmt.Errorf("user %d: %w", id, err)
		}
		user := models.User{
			ID:        id,
			Username:  r["username"],
			Email:     r["email"],
			Role:      role,
			Bio:       r["bio"],
			FirstName: r["first_name"],
			LastName:  r["last_name"],
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) loadTitles(tx *gorm.DB, rows []row) error {
	for _, r := range rows {
		id, err := parseInt64(r, "id")
		if err != nil {
			return err
		}
		year, err := parseInt(r, "year")
		if err != nil {
			return err
		}

		title := models.Title{
			ID:          id,
			Name:        r["name"],
			Year:        year,
			Description: r["description"],
		}
		if raw := r["category"]; raw != "" {
			categoryID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("title %d: bad category id %q", id, raw)
			}
			var category models.Category
			if err := tx.First(&category, categoryID).Error; err != nil {
				return fmt.Errorf("title %d: category %d: %w", id, categoryID, err)
			}
			title.CategoryID = &category.ID
		}
		if err := tx.Create(&title).Error; err != nil {
			return err
		}

		// Inline genre column: pipe-separated slugs.
		if raw := r["genre"]; raw != "" {
			for _, slug := range strings.Split(raw, "|") {
				var genre models.Genre
				if err := tx.Where("slug = ?", slug).First(&genre).Error; err != nil {
					return fmt.Errorf("title %d: genre %q: %w", id, slug, err)
				}
				if err := tx.Model(&title).Association("Genres").Append(&genre); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (im *Importer) loadGenreTitles(tx *gorm.DB, rows []row) error {
	for _, r := range rows {
		titleID, err := parseInt64(r, "title_id")
		if err != nil {
			return err
		}
		genreID, err := parseInt64(r, "genre_id")
		if err != nil {
			return err
		}
		var title models.Title
		if err := tx.First(&title, titleID).Error; err != nil {
			return fmt.Errorf("title %d: %w", titleID, err)
		}
		var genre models.Genre
		if err := tx.First(&genre, genreID).Error; err != nil {
			return fmt.Errorf("genre %d: %w", genreID, err)
		}
		if err := tx.Model(&title).Association("Genres").Append(&genre); err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) loadReviews(tx *gorm.DB, rows []row) error {
	for _, r := range rows {
		id, err := parseInt64(r, "id")
		if err != nil {
			return err
		}
		titleID, err := parseInt64(r, "title_id")
		if err != nil {
			return err
		}
		authorID, err := parseInt64(r, "author")
		if err != nil {
			return err
		}
		score, err := parseInt(r, "score")
		if err != nil {
			return err
		}
		pubDate, err := parseTime(r["pub_date"])
		if err != nil {
			return fmt.Errorf("review %d: %w", id, err)
		}

		review := models.Review{
			ID:        id,
			TitleID:   titleID,
			AuthorID:  authorID,
			Text:      r["text"],
			Score:     score,
			CreatedAt: pubDate,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) loadComments(tx *gorm.DB, rows []row) error {
	for _, r := range rows {
		id, err := parseInt64(r, "id")
		if err != nil {
			return err
		}
		reviewID, err := parseInt64(r, "review_id")
		if err != nil {
			return err
		}
		authorID, err := parseInt64(r, "author")
		if err != nil {
			return err
		}
		pubDate, err := parseTime(r["pub_date"])
		if err != nil {
			return fmt.Errorf("comment %d: %w", id, err)
		}

		comment := models.Comment{
			ID:        id,
			ReviewID:  reviewID,
			AuthorID:  authorID,
			Text:      r["text"],
			CreatedAt: pubDate,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
	}
	return nil
}

func readCSV(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		r := make(row, len(header))
		for i, field := range header {
			if i < len(record) {
				r[strings.TrimSpace(field)] = record[i]
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func parseInt64(r row, key string) (int64, error) {
	value, err := strconv.ParseInt(r[key], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", key, r[key])
	}
	return value, nil
}

func parseInt(r row, key string) (int, error) {
	value, err := strconv.Atoi(r[key])
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", key, r[key])
	}
	return value, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad pub_date value %q", raw)
}
