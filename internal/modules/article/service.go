package article

import (
	"context"
	"errors"
	"strings"

	"github.com/pagecraft/enhance/internal/models"
	"github.com/pagecraft/enhance/internal/modules/enhance"
	"github.com/pagecraft/enhance/internal/pkg/pagination"
	"github.com/pagecraft/enhance/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("article not found")
	ErrSlugTaken     = errors.New("slug already in use")
	ErrTitleRequired = errors.New("title is required")
)

// Service owns the synced article store. Mutations invalidate the
// enhancement cache for the touched article.
type Service struct {
	db         *gorm.DB
	enhanceSvc *enhance.Service
	logger     *zap.Logger
}

func NewService(db *gorm.DB, enhanceSvc *enhance.Service, logger *zap.Logger) *Service {
	return &Service{db: db, enhanceSvc: enhanceSvc, logger: logger}
}

// CreateInput is the payload for creating or replacing an article.
type CreateInput struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Text      string `json:"text"`
	Published bool   `json:"published"`
}

// UpdateInput carries a partial article update.
type UpdateInput struct {
	Title     *string `json:"title"`
	Slug      *string `json:"slug"`
	Text      *string `json:"text"`
	Published *bool   `json:"published"`
}

func (s *Service) List(q pagination.Query, publishedOnly bool) ([]models.ArticleModel, response.Pagination, error) {
	query := s.db.Model(&models.ArticleModel{}).Order("updated_at DESC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var articles []models.ArticleModel
	page, err := pagination.Paginate(query, q, &articles)
	return articles, page, err
}

func (s *Service) Get(id string) (*models.ArticleModel, error) {
	var article models.ArticleModel
	if err := s.db.Where("id = ?", id).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (s *Service) GetBySlug(slug string) (*models.ArticleModel, error) {
	var article models.ArticleModel
	if err := s.db.Where("slug = ?", slug).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (s *Service) Create(input CreateInput) (*models.ArticleModel, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = slugify(title)
	}

	var count int64
	if err := s.db.Model(&models.ArticleModel{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugTaken
	}

	article := models.ArticleModel{
		Title:     title,
		Slug:      slug,
		Text:      input.Text,
		Published: input.Published,
	}
	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// Update applies a partial update and drops any stale enhancements.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*models.ArticleModel, error) {
	article, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		article.Title = title
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug != "" && slug != article.Slug {
			var count int64
			if err := s.db.Model(&models.ArticleModel{}).
				Where("slug = ? AND id <> ?", slug, id).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrSlugTaken
			}
			article.Slug = slug
		}
	}
	if input.Text != nil {
		article.Text = *input.Text
	}
	if input.Published != nil {
		article.Published = *input.Published
	}

	if err := s.db.Save(article).Error; err != nil {
		return nil, err
	}

	s.enhanceSvc.InvalidateCache(ctx, id)
	return article, nil
}

// Delete removes an article and its cached enhancements.
func (s *Service) Delete(ctx context.Context, id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.ArticleModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.enhanceSvc.InvalidateCache(ctx, id)
	return nil
}

func slugify(title string) string {
	out := make([]rune, 0, len(title))
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, r)
			lastDash = false
		case !lastDash:
			out = append(out, '-')
			lastDash = true
		}
	}
	return strings.Trim(string(out), "-")
}
