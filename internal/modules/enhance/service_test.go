package enhance

import (
	"context"
	"testing"
	"time"

	"github.com/pagecraft/enhance/internal/config"
	"github.com/pagecraft/enhance/internal/models"
	"github.com/pagecraft/enhance/internal/modules/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingClient records how many completions were fired so tests can
// assert a code path never reached the vendor.
type countingClient struct {
	calls int
	reply string
	err   error
}

func (c *countingClient) Name() string { return "openai" }

func (c *countingClient) Complete(context.Context, string, string) (string, error) {
	c.calls++
	return c.reply, c.err
}

func newTestService(clock *fakeClock, client *countingClient) (*Service, *fakeKV) {
	kv := newFakeKV(clock.Now)
	svc := NewService(nil, configs.NewService(nil, nil), kv, zap.NewNop())
	svc.limiter.now = clock.Now

	cfg := config.DefaultFullConfig()
	cfg.AI.Providers = []config.AIProvider{{
		ID:      "p1",
		Name:    "Primary",
		Type:    "openai",
		APIKey:  "sk-test",
		Enabled: true,
	}}

	svc.loadConfig = func() (*config.FullConfig, error) { return &cfg, nil }
	svc.newClient = func(ResolvedProvider) (ProviderClient, error) { return client, nil }
	svc.loadArticle = func(context.Context, string) (*models.ArticleModel, error) {
		return &models.ArticleModel{
			Base:  models.Base{ID: "a1"},
			Title: "Indexing",
			Text:  "Articles about database indexing.",
		}, nil
	}
	svc.listCandidates = func(context.Context, string) ([]linkCandidate, error) { return nil, nil }

	return svc, kv
}

func TestGetFAQ_CacheHitSkipsProvider(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	client := &countingClient{reply: `[{"question":"Q","answer":"A"}]`}
	svc, _ := newTestService(clock, client)

	cached := FaqResult{
		RefID:    "a1",
		Items:    []models.FaqItem{{Question: "Cached?", Answer: "Yes."}},
		Provider: "openai",
		Model:    "gpt-4o-mini",
	}
	require.NoError(t, svc.cache.Put(context.Background(), FeatureFAQ, "a1", cached, time.Hour))

	result, err := svc.GetFAQ(context.Background(), "user-1", "a1")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Cached?", result.Items[0].Question)
	assert.Zero(t, client.calls)
}

func TestGetFAQ_QuotaCheckedBeforeProviderCall(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	client := &countingClient{reply: `[{"question":"Q","answer":"A"}]`}
	svc, _ := newTestService(clock, client)

	limits := LimitConfig{PostLimit: 2, PostWindowSeconds: 300, DailyLimit: 30}
	require.NoError(t, svc.limiter.Record(context.Background(), "user-1", "a1", limits))
	require.NoError(t, svc.limiter.Record(context.Background(), "user-1", "a1", limits))

	_, err := svc.GetFAQ(context.Background(), "user-1", "a1")
	require.Error(t, err)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindRateLimited, e.Kind)
	assert.Greater(t, e.RetryAfter, 0)
	assert.Zero(t, client.calls, "exhausted quota must not spend a vendor call")
}

func TestGetInternalLinks_NoCandidatesSkipsProviderAndQuota(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	client := &countingClient{reply: `[]`}
	svc, kv := newTestService(clock, client)

	result, err := svc.GetInternalLinks(context.Background(), "user-1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", result.RefID)
	require.NotNil(t, result.Items)
	assert.Empty(t, result.Items)

	assert.Zero(t, client.calls)
	assert.Zero(t, kv.sets, "no quota charge and no cache write without candidates")
}

func TestGetSummary_FeatureDisabled(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	client := &countingClient{reply: "A summary."}
	svc, _ := newTestService(clock, client)

	cfg := config.DefaultFullConfig()
	cfg.AI.EnableSummary = false
	svc.loadConfig = func() (*config.FullConfig, error) { return &cfg, nil }

	_, err := svc.GetSummary(context.Background(), "user-1", "a1")
	assert.ErrorIs(t, err, ErrFeatureDisabled)
	assert.Zero(t, client.calls)
}

func TestValidateAPIKey_UnknownProvider(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	client := &countingClient{reply: "ok"}
	svc, _ := newTestService(clock, client)

	err := svc.ValidateAPIKey(context.Background(), "ghost")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNoProviderConfigured, e.Kind)
	assert.Zero(t, client.calls)
}
