package cache

import (
	"context"
	"testing"

	"attendance-rebuilder/internal/config"
	"attendance-rebuilder/internal/models"
	"attendance-rebuilder/internal/timeofday"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *TemplateCache) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cfg := &config.Config{}
	cfg.Cache.TemplateKeyPrefix = "attendance:template:"
	cfg.Cache.TemplateTTL = 300

	return mr, NewTemplateCache(cfg, redisClient, zap.NewNop())
}

func sampleTemplates() map[string]models.ShiftTemplate {
	return map[string]models.ShiftTemplate{
		"A": {
			Code:          "A",
			Label:         "Shift A",
			CheckInStart:  timeofday.MustParse("05:00:00"),
			CheckInEnd:    timeofday.MustParse("07:00:00"),
			LateThreshold: timeofday.MustParse("06:15:00"),
		},
	}
}

func TestTemplateCache_Miss(t *testing.T) {
	_, cache := setupTestCache(t)

	got, err := cache.Get(context.Background())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTemplateCache_SetGet(t *testing.T) {
	_, cache := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleTemplates()))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Shift A", got["A"].Label)
	assert.Equal(t, timeofday.MustParse("06:15:00"), got["A"].LateThreshold)
}

func TestTemplateCache_CorruptEntryTreatedAsMiss(t *testing.T) {
	mr, cache := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("attendance:template:all", "{not json"))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTemplateCache_Invalidate(t *testing.T) {
	_, cache := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleTemplates()))
	require.NoError(t, cache.Invalidate(ctx))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTemplateCache_TTLApplied(t *testing.T) {
	mr, cache := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleTemplates()))
	ttl := mr.TTL("attendance:template:all")
	assert.Positive(t, ttl)
}
