//go:build integration

package levy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"carbonledger/internal/levy"
	"carbonledger/internal/platform/config"
	platformredis "carbonledger/internal/platform/redis"
	"carbonledger/pkg/testutil/containers"
)

type CachedPriceSourceSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	client *platformredis.Client
}

func TestCachedPriceSourceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedPriceSourceSuite))
}

func (s *CachedPriceSourceSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())

	client, err := platformredis.New(config.RedisConfig{URL: s.redis.Addr})
	s.Require().NoError(err)
	s.Require().NotNil(client)
	s.client = client
}

func (s *CachedPriceSourceSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *CachedPriceSourceSuite) TestSetAndGetPrice() {
	ctx := context.Background()
	source := levy.NewCachedPriceSource(s.client, 85)

	s.Require().NoError(source.SetPrice(ctx, 92.5))

	price, err := source.CurrentPrice(ctx)
	s.Require().NoError(err)
	s.Equal(92.5, price)
}

func (s *CachedPriceSourceSuite) TestFallbackOnEmptyCache() {
	price, err := levy.NewCachedPriceSource(s.client, 85).CurrentPrice(context.Background())
	s.Require().NoError(err)
	s.Equal(85.0, price)
}

func (s *CachedPriceSourceSuite) TestFallbackOnMalformedValue() {
	ctx := context.Background()
	s.Require().NoError(s.client.Set(ctx, "carbonledger:carbon_price_eur", "not-a-number", 0).Err())

	price, err := levy.NewCachedPriceSource(s.client, 85).CurrentPrice(ctx)
	s.Require().NoError(err)
	s.Equal(85.0, price)
}

func (s *CachedPriceSourceSuite) TestRejectsNonPositivePrice() {
	err := levy.NewCachedPriceSource(s.client, 85).SetPrice(context.Background(), -1)
	s.Error(err)
}
