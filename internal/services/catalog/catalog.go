package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
	pgmodels "reviewhub/proj/internal/storage/postgres/models"
)

type CategoriesStorage interface {
	Insert(ctx context.Context, name, slug string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, search string, f filters.Filters) ([]models.Category, int, error)
	Delete(ctx context.Context, slug string) error
}

type GenresStorage interface {
	Insert(ctx context.Context, name, slug string) (*models.Genre, error)
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	List(ctx context.Context, search string, f filters.Filters) ([]models.Genre, int, error)
	Delete(ctx context.Context, slug string) error
}

type TitlesStorage interface {
	Insert(ctx context.Context, name string, year int32, description, categorySlug string, genreSlugs []string) (*models.Title, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, filter pgmodels.TitlesFilter, f filters.Filters) ([]models.Title, int, error)
	Update(ctx context.Context, id int64, name string, year int32, description string, categorySlug *string, genreSlugs []string) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type CatalogService struct {
	log        *slog.Logger
	categories CategoriesStorage
	genres     GenresStorage
	titles     TitlesStorage
}

func New(log *slog.Logger, categories CategoriesStorage, genres GenresStorage, titles TitlesStorage) *CatalogService {
	return &CatalogService{
		log:        log,
		categories: categories,
		genres:     genres,
		titles:     titles,
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	const op = "catalog.CatalogService.CreateCategory"
	category, err := s.categories.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrSlugTaken
		}
		s.log.With("op", op, "slug", slug).Error(err.Error())
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, f filters.Filters) ([]models.Category, int, error) {
	return s.categories.List(ctx, search, f)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	if err := s.categories.Delete(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, name, slug string) (*models.Genre, error) {
	const op = "catalog.CatalogService.CreateGenre"
	genre, err := s.genres.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrSlugTaken
		}
		s.log.With("op", op, "slug", slug).Error(err.Error())
		return nil, err
	}
	return genre, nil
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, f filters.Filters) ([]models.Genre, int, error) {
	return s.genres.List(ctx, search, f)
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	if err := s.genres.Delete(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}

// TitleUpdateParams carries a partial title update; nil means unchanged.
// An explicit empty CategorySlug detaches the category.
type TitleUpdateParams struct {
	Name         *string
	Year         *int32
	Description  *string
	CategorySlug *string
	GenreSlugs   []string
}

func (s *CatalogService) CreateTitle(ctx context.Context, name string, year int32, description, categorySlug string, genreSlugs []string) (*models.Title, error) {
	const op = "catalog.CatalogService.CreateTitle"
	if year > int32(time.Now().Year()) {
		return nil, ErrFutureYear
	}
	title, err := s.titles.Insert(ctx, name, year, description, categorySlug, genreSlugs)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// a referenced category or genre slug does not exist
			return nil, ErrRelationNotFound
		}
		s.log.With("op", op, "name", name).Error(err.Error())
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.titles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) ListTitles(ctx context.Context, filter pgmodels.TitlesFilter, f filters.Filters) ([]models.Title, int, error) {
	return s.titles.List(ctx, filter, f)
}

func (s *CatalogService) UpdateTitle(ctx context.Context, id int64, params TitleUpdateParams) (*models.Title, error) {
	const op = "catalog.CatalogService.UpdateTitle"
	title, err := s.GetTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		title.Name = *params.Name
	}
	if params.Year != nil {
		if *params.Year > int32(time.Now().Year()) {
			return nil, ErrFutureYear
		}
		title.Year = *params.Year
	}
	if params.Description != nil {
		title.Description = *params.Description
	}
	updated, err := s.titles.Update(ctx, id, title.Name, title.Year, title.Description, params.CategorySlug, params.GenreSlugs)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRelationNotFound
		}
		s.log.With("op", op, "id", id).Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *CatalogService) DeleteTitle(ctx context.Context, id int64) error {
	if err := s.titles.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}
