package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/log"
)

type (
	// CachedServices decorates Services with a Redis-backed smart wallet
	// cache and an in-process supplemental order cache
	CachedServices struct {
		Services
		redis  *redis.Client
		orders *lruCache[api.OrderID, *api.OrderInfo]
		prefix string
		ttl    time.Duration
	}

	// CacheConfig configures CachedServices
	CacheConfig struct {
		Prefix         string
		WalletTTL      time.Duration
		OrderTTL       time.Duration
		OrderCacheSize int
	}
)

const (
	DefaultCachePrefix    = "paybutton"
	DefaultWalletTTL      = 5 * time.Minute
	DefaultOrderTTL       = 30 * time.Second
	DefaultOrderCacheSize = 1024
)

var _ Services = (*CachedServices)(nil)

// NewCachedServices wraps next. A nil Redis client disables wallet caching
func NewCachedServices(
	next Services, rdb *redis.Client, cfg CacheConfig,
) *CachedServices {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultCachePrefix
	}
	if cfg.WalletTTL <= 0 {
		cfg.WalletTTL = DefaultWalletTTL
	}
	if cfg.OrderTTL <= 0 {
		cfg.OrderTTL = DefaultOrderTTL
	}
	if cfg.OrderCacheSize <= 0 {
		cfg.OrderCacheSize = DefaultOrderCacheSize
	}
	return &CachedServices{
		Services: next,
		redis:    rdb,
		orders: newLRUCache[api.OrderID, *api.OrderInfo](
			cfg.OrderCacheSize, cfg.OrderTTL,
		),
		prefix: cfg.Prefix,
		ttl:    cfg.WalletTTL,
	}
}

func (c *CachedServices) GetSupplementalOrderInfo(
	ctx context.Context, orderID api.OrderID,
) (*api.OrderInfo, error) {
	return c.orders.get(orderID, func() (*api.OrderInfo, error) {
		return c.Services.GetSupplementalOrderInfo(ctx, orderID)
	})
}

// GetSmartWallet serves the wallet from Redis when present. Redis failures
// degrade to an uncached fetch
func (c *CachedServices) GetSmartWallet(
	ctx context.Context, req *api.SmartWalletRequest,
) (api.Wallet, error) {
	if c.redis == nil {
		return c.Services.GetSmartWallet(ctx, req)
	}

	key := c.walletKey(req)
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var w api.Wallet
		if err := json.Unmarshal(data, &w); err == nil {
			return w, nil
		}
	case !errors.Is(err, redis.Nil):
		slog.Warn("Wallet cache read failed",
			log.ClientID(req.ClientID),
			log.Error(err))
	}

	w, err := c.Services.GetSmartWallet(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(w); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Warn("Wallet cache write failed",
				log.ClientID(req.ClientID),
				log.Error(err))
		}
	}
	return w, nil
}

// InvalidateWallet drops the cached wallet for the request
func (c *CachedServices) InvalidateWallet(
	ctx context.Context, req *api.SmartWalletRequest,
) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Del(ctx, c.walletKey(req)).Err()
}

func (c *CachedServices) walletKey(req *api.SmartWalletRequest) string {
	return strings.Join([]string{
		c.prefix, "wallet",
		string(req.ClientID),
		req.ClientMetadataID,
		req.Currency,
		req.Amount,
	}, ":")
}
