package container

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-edge/internal/config"
	"blog-edge/pkg/logger"
)

func testConfig(redisURL string) *config.Config {
	return &config.Config{
		Environment:   "test",
		RedisURL:      redisURL,
		AssetOrigin:   "https://assets.haasonsaas.com",
		SiteBaseURL:   "https://haasonsaas.com",
		SiteName:      "Haas on SaaS",
		TwitterHandle: "@haasonsaas",
		DefaultAuthor: "Jonathan Haas",
	}
}

func TestNew(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := New(testConfig("redis://"+mr.Addr()), logger.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, c.KV)
	assert.NotNil(t, c.Assets)
	assert.NotNil(t, c.Services.Metadata)
	assert.NotNil(t, c.Services.Catalog)
	assert.NotNil(t, c.Services.Metrics)
	assert.NotNil(t, c.Services.Newsletter)
	assert.NotNil(t, c.Services.Feedback)

	assert.Equal(t, "https://haasonsaas.com", c.Site.BaseURL)
	assert.Equal(t, "@haasonsaas", c.Site.TwitterHandle)

	assert.Equal(t, c.Config, c.GetConfig())
	assert.Equal(t, c.Logger, c.GetLogger())
	assert.Equal(t, c.KV, c.GetKVClient())
}

func TestNew_InvalidRedisURL(t *testing.T) {
	c, err := New(testConfig("invalid://redis-url"), logger.NewNop())
	assert.Error(t, err)
	assert.Nil(t, c)
}
