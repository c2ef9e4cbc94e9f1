package cacheddevice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "drivewise_cached_device_lookups_total",
	Help: "Cached device detail lookups by outcome",
}, []string{"outcome"})

const (
	detailsKeyPrefix = "device:details:"
	serialKeyPrefix  = "device:serial:"
)

// RedisStore reads cached device details from Redis. Detail payloads are
// JSON under device:details:<id>; device:serial:<serial> indexes serial
// numbers back to ids.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, id domain.DeviceID) (*models.CachedDevice, error) {
	raw, err := s.client.Get(ctx, detailsKeyPrefix+id.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheLookups.WithLabelValues("miss").Inc()
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get cached device: %w", err)
	}
	var d models.CachedDevice
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode cached device %s: %w", id, err)
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return &d, nil
}

// GetBatch fetches all requested ids in one MGET. Absent ids are omitted from
// the result.
func (s *RedisStore) GetBatch(ctx context.Context, ids []domain.DeviceID) (map[domain.DeviceID]models.CachedDevice, error) {
	if len(ids) == 0 {
		return map[domain.DeviceID]models.CachedDevice{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = detailsKeyPrefix + id.String()
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("batch get cached devices: %w", err)
	}
	out := make(map[domain.DeviceID]models.CachedDevice, len(ids))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			cacheLookups.WithLabelValues("miss").Inc()
			continue
		}
		var d models.CachedDevice
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decode cached device %s: %w", ids[i], err)
		}
		cacheLookups.WithLabelValues("hit").Inc()
		out[ids[i]] = d
	}
	return out, nil
}

func (s *RedisStore) GetBySerial(ctx context.Context, serial string) (*models.CachedDevice, error) {
	raw, err := s.client.Get(ctx, serialKeyPrefix+serial).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheLookups.WithLabelValues("miss").Inc()
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("resolve device serial: %w", err)
	}
	id, err := domain.ParseDeviceID(raw)
	if err != nil {
		return nil, fmt.Errorf("decode serial index %q: %w", serial, err)
	}
	return s.Get(ctx, id)
}
