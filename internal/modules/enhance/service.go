package enhance

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pagecraft/enhance/internal/config"
	"github.com/pagecraft/enhance/internal/models"
	"github.com/pagecraft/enhance/internal/modules/configs"
	"github.com/pagecraft/enhance/internal/pkg/pagination"
	"github.com/pagecraft/enhance/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrContentNotFound is returned when the referenced article does not exist.
var ErrContentNotFound = errors.New("content not found")

// Service orchestrates the enhancement features: config resolution,
// quota checks, the provider call, normalization, persistence and
// caching.
type Service struct {
	db      *gorm.DB
	cfgSvc  *configs.Service
	cache   *Cache
	limiter *Limiter
	logger  *zap.Logger

	// Seams swappable in tests; defaults hit the real client, config
	// service and database.
	newClient      func(ResolvedProvider) (ProviderClient, error)
	loadConfig     func() (*config.FullConfig, error)
	loadArticle    func(ctx context.Context, refID string) (*models.ArticleModel, error)
	listCandidates func(ctx context.Context, refID string) ([]linkCandidate, error)
}

func NewService(db *gorm.DB, cfgSvc *configs.Service, kv KV, logger *zap.Logger) *Service {
	s := &Service{
		db:        db,
		cfgSvc:    cfgSvc,
		cache:     NewCache(kv),
		limiter:   NewLimiter(kv),
		logger:    logger,
		newClient: NewProviderClient,
	}
	s.loadConfig = cfgSvc.Get
	s.loadArticle = s.articleByID
	s.listCandidates = s.publishedCandidates
	return s
}

// GetFAQ returns the FAQ list for an article, generating it when no
// cached result exists.
func (s *Service) GetFAQ(ctx context.Context, userID, refID string) (*FaqResult, error) {
	cfg, article, err := s.prepare(ctx, FeatureFAQ, refID)
	if err != nil {
		return nil, err
	}

	var cached FaqResult
	hit, err := s.cache.Get(ctx, FeatureFAQ, refID, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return &cached, nil
	}

	client, provider, err := s.resolveClient(cfg.AI, FeatureFAQ)
	if err != nil {
		return nil, err
	}

	system, prompt := buildFAQPrompt(cfg.AI.TargetLanguage, article.Title, article.Text)
	raw, err := s.complete(ctx, client, userID, refID, limitConfig(cfg.AI), system, prompt)
	if err != nil {
		return nil, err
	}

	result := &FaqResult{
		RefID:    refID,
		Items:    normalizeFAQ(raw),
		Provider: client.Name(),
		Model:    provider.Model,
	}

	row := models.AIFaqModel{
		Hash:     resultHash(FeatureFAQ, refID, article.Text, cfg.AI.TargetLanguage),
		RefID:    refID,
		Items:    result.Items,
		Language: cfg.AI.TargetLanguage,
		Provider: result.Provider,
		Model:    result.Model,
	}
	s.db.WithContext(ctx).Where("hash = ?", row.Hash).Assign(row).FirstOrCreate(&row)

	s.store(ctx, FeatureFAQ, refID, result, cfg.AI)
	return result, nil
}

// GetSummary returns the summary for an article, generating it when no
// cached result exists.
func (s *Service) GetSummary(ctx context.Context, userID, refID string) (*SummaryResult, error) {
	cfg, article, err := s.prepare(ctx, FeatureSummary, refID)
	if err != nil {
		return nil, err
	}

	var cached SummaryResult
	hit, err := s.cache.Get(ctx, FeatureSummary, refID, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return &cached, nil
	}

	client, provider, err := s.resolveClient(cfg.AI, FeatureSummary)
	if err != nil {
		return nil, err
	}

	system, prompt := buildSummaryPrompt(cfg.AI.TargetLanguage, article.Title, article.Text)
	raw, err := s.complete(ctx, client, userID, refID, limitConfig(cfg.AI), system, prompt)
	if err != nil {
		return nil, err
	}

	summary := normalizeSummary(raw)
	if summary == "" {
		return nil, newError(KindMalformedResponse, "provider returned an empty summary")
	}

	result := &SummaryResult{
		RefID:    refID,
		Summary:  summary,
		Provider: client.Name(),
		Model:    provider.Model,
	}

	row := models.AISummaryModel{
		Hash:     resultHash(FeatureSummary, refID, article.Text, cfg.AI.TargetLanguage),
		RefID:    refID,
		Summary:  summary,
		Language: cfg.AI.TargetLanguage,
		Provider: result.Provider,
		Model:    result.Model,
	}
	s.db.WithContext(ctx).Where("hash = ?", row.Hash).Assign(row).FirstOrCreate(&row)

	s.store(ctx, FeatureSummary, refID, result, cfg.AI)
	return result, nil
}

// GetInternalLinks returns cross-link suggestions for an article. With
// no other published content to link to, it short-circuits to an empty
// result without spending a provider call or quota.
func (s *Service) GetInternalLinks(ctx context.Context, userID, refID string) (*LinksResult, error) {
	cfg, article, err := s.prepare(ctx, FeatureLinks, refID)
	if err != nil {
		return nil, err
	}

	var cached LinksResult
	hit, err := s.cache.Get(ctx, FeatureLinks, refID, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return &cached, nil
	}

	candidates, err := s.listCandidates(ctx, refID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &LinksResult{RefID: refID, Items: []models.LinkSuggestion{}}, nil
	}

	client, provider, err := s.resolveClient(cfg.AI, FeatureLinks)
	if err != nil {
		return nil, err
	}

	system, prompt := buildLinksPrompt(article.Title, article.Text, candidates)
	raw, err := s.complete(ctx, client, userID, refID, limitConfig(cfg.AI), system, prompt)
	if err != nil {
		return nil, err
	}

	result := &LinksResult{
		RefID:    refID,
		Items:    normalizeLinks(raw, candidates),
		Provider: client.Name(),
		Model:    provider.Model,
	}

	row := models.AILinkSuggestionModel{
		Hash:     resultHash(FeatureLinks, refID, article.Text, ""),
		RefID:    refID,
		Items:    result.Items,
		Provider: result.Provider,
		Model:    result.Model,
	}
	s.db.WithContext(ctx).Where("hash = ?", row.Hash).Assign(row).FirstOrCreate(&row)

	s.store(ctx, FeatureLinks, refID, result, cfg.AI)
	return result, nil
}

// ListResults returns the persisted generation history for one
// feature, newest first.
func (s *Service) ListResults(ctx context.Context, feature string, q pagination.Query) (interface{}, response.Pagination, error) {
	switch feature {
	case FeatureFAQ:
		var rows []models.AIFaqModel
		page, err := pagination.Paginate(s.resultQuery(ctx, &models.AIFaqModel{}), q, &rows)
		return rows, page, err
	case FeatureSummary:
		var rows []models.AISummaryModel
		page, err := pagination.Paginate(s.resultQuery(ctx, &models.AISummaryModel{}), q, &rows)
		return rows, page, err
	case FeatureLinks:
		var rows []models.AILinkSuggestionModel
		page, err := pagination.Paginate(s.resultQuery(ctx, &models.AILinkSuggestionModel{}), q, &rows)
		return rows, page, err
	default:
		return nil, response.Pagination{}, newError(KindBadRequest,
			fmt.Sprintf("unknown feature %q", feature))
	}
}

func (s *Service) resultQuery(ctx context.Context, model interface{}) *gorm.DB {
	return s.db.WithContext(ctx).Model(model).Order("created_at DESC")
}

// DeleteResult removes one persisted result row and drops the cache
// entry of its article so the next request regenerates.
func (s *Service) DeleteResult(ctx context.Context, feature, id string) error {
	var refID string
	var res *gorm.DB

	switch feature {
	case FeatureFAQ:
		var row models.AIFaqModel
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
			return resultLookupError(err)
		}
		refID = row.RefID
		res = s.db.WithContext(ctx).Delete(&row)
	case FeatureSummary:
		var row models.AISummaryModel
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
			return resultLookupError(err)
		}
		refID = row.RefID
		res = s.db.WithContext(ctx).Delete(&row)
	case FeatureLinks:
		var row models.AILinkSuggestionModel
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
			return resultLookupError(err)
		}
		refID = row.RefID
		res = s.db.WithContext(ctx).Delete(&row)
	default:
		return newError(KindBadRequest, fmt.Sprintf("unknown feature %q", feature))
	}

	if res.Error != nil {
		return res.Error
	}
	s.InvalidateCache(ctx, refID)
	return nil
}

func resultLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrContentNotFound
	}
	return err
}

// InvalidateCache drops the cached results of all features for one
// article. Called when the article changes or is deleted.
func (s *Service) InvalidateCache(ctx context.Context, refID string) {
	if err := s.cache.Invalidate(ctx, refID); err != nil {
		s.logger.Warn("cache invalidation failed",
			zap.String("ref_id", refID), zap.Error(err))
	}
}

// ValidateAPIKey fires a minimal completion at the provider to verify
// its stored key is usable.
func (s *Service) ValidateAPIKey(ctx context.Context, providerID string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}

	var entry *config.AIProvider
	for i := range cfg.AI.Providers {
		if cfg.AI.Providers[i].ID == strings.TrimSpace(providerID) {
			entry = &cfg.AI.Providers[i]
			break
		}
	}
	if entry == nil {
		return newError(KindNoProviderConfigured, fmt.Sprintf("provider %q not found", providerID))
	}

	client, _, err := s.buildClient(*entry, "")
	if err != nil {
		return err
	}
	_, err = client.Complete(ctx, "", "Reply with the single word: ok")
	return err
}

// prepare loads the runtime config, checks the feature switch, and
// fetches the article.
func (s *Service) prepare(ctx context.Context, feature, refID string) (*config.FullConfig, *models.ArticleModel, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.AI.FeatureEnabled(feature) {
		return nil, nil, ErrFeatureDisabled
	}

	article, err := s.loadArticle(ctx, refID)
	if err != nil {
		return nil, nil, err
	}
	return cfg, article, nil
}

func (s *Service) articleByID(ctx context.Context, refID string) (*models.ArticleModel, error) {
	var article models.ArticleModel
	if err := s.db.WithContext(ctx).Where("id = ?", refID).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &article, nil
}

// complete runs one provider attempt under the rate limiter. The
// attempt is charged whether or not the vendor call succeeds.
func (s *Service) complete(ctx context.Context, client ProviderClient, userID, refID string, limits LimitConfig, system, prompt string) (string, error) {
	if err := s.limiter.TryAcquire(ctx, userID, refID, limits); err != nil {
		return "", err
	}

	raw, callErr := client.Complete(ctx, system, prompt)
	if err := s.limiter.Record(ctx, userID, refID, limits); err != nil {
		s.logger.Warn("rate limit record failed",
			zap.String("user_id", userID), zap.String("ref_id", refID), zap.Error(err))
	}
	if callErr != nil {
		s.logger.Warn("provider call failed",
			zap.String("provider", client.Name()), zap.String("ref_id", refID), zap.Error(callErr))
		return "", callErr
	}
	return raw, nil
}

// resolveClient picks the provider for a feature and builds its client.
func (s *Service) resolveClient(aiCfg config.AIConfig, feature string) (ProviderClient, ResolvedProvider, error) {
	assignment := aiCfg.Assignment(feature)

	var providerID, overrideModel string
	if assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	if providerID != "" {
		for _, p := range aiCfg.Providers {
			if p.Enabled && strings.TrimSpace(p.ID) == providerID {
				return s.buildClient(p, overrideModel)
			}
		}
	}
	for _, p := range aiCfg.Providers {
		if p.Enabled {
			return s.buildClient(p, overrideModel)
		}
	}

	return nil, ResolvedProvider{}, newError(KindNoProviderConfigured, "no enabled AI provider configured")
}

func (s *Service) buildClient(p config.AIProvider, overrideModel string) (ProviderClient, ResolvedProvider, error) {
	apiKey, err := s.cfgSvc.OpenKey(p.APIKey)
	if err != nil {
		return nil, ResolvedProvider{}, err
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, ResolvedProvider{}, newError(KindMissingCredentials,
			fmt.Sprintf("provider %q has no api key", p.ID))
	}

	model := overrideModel
	if model == "" {
		model = strings.TrimSpace(p.DefaultModel)
	}

	resolved := ResolvedProvider{
		ID:             p.ID,
		Name:           p.Name,
		Type:           p.Type,
		APIKey:         apiKey,
		Endpoint:       p.Endpoint,
		Model:          model,
		TimeoutSeconds: p.TimeoutSeconds,
	}
	client, err := s.newClient(resolved)
	if err != nil {
		return nil, ResolvedProvider{}, err
	}
	if resolved.Model == "" {
		resolved.Model = defaultModelFor(resolved.Type)
	}
	return client, resolved, nil
}

func defaultModelFor(providerType string) string {
	t := normalizeProviderType(providerType)
	if alias, ok := providerTypeAliases[t]; ok {
		t = alias
	}
	switch t {
	case "claude":
		return "claude-haiku-4-5-20251001"
	case "gemini":
		return "gemini-2.0-flash"
	case "grok":
		return "grok-2-latest"
	default:
		return "gpt-4o-mini"
	}
}

func (s *Service) publishedCandidates(ctx context.Context, refID string) ([]linkCandidate, error) {
	var rows []models.ArticleModel
	err := s.db.WithContext(ctx).Model(&models.ArticleModel{}).
		Select("id", "title", "slug").
		Where("published = ? AND id <> ?", true, refID).
		Order("updated_at DESC").
		Limit(50).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]linkCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, linkCandidate{ID: row.ID, Title: row.Title, Slug: row.Slug})
	}
	return out, nil
}

func (s *Service) store(ctx context.Context, feature, refID string, v interface{}, aiCfg config.AIConfig) {
	ttlHours := aiCfg.CacheTTLHours
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if err := s.cache.Put(ctx, feature, refID, v, time.Duration(ttlHours)*time.Hour); err != nil {
		s.logger.Warn("cache write failed",
			zap.String("feature", feature), zap.String("ref_id", refID), zap.Error(err))
	}
}

func limitConfig(aiCfg config.AIConfig) LimitConfig {
	cfg := LimitConfig{
		PostLimit:         aiCfg.PostLimit,
		PostWindowSeconds: aiCfg.PostWindowSeconds,
		DailyLimit:        aiCfg.DailyLimit,
	}
	if cfg.PostLimit <= 0 {
		cfg.PostLimit = 2
	}
	if cfg.PostWindowSeconds <= 0 {
		cfg.PostWindowSeconds = 300
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = 30
	}
	return cfg
}

func resultHash(feature, refID, text, lang string) string {
	h := sha256.Sum256([]byte(feature + ":" + refID + ":" + lang + ":" + text))
	return fmt.Sprintf("%x", h)
}
