package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

type (
	boxCache struct {
		cache *bigcache.BigCache
	}

	xxhasher struct{}
)

func (xxhasher) Sum64(key string) uint64 {
	return xxhash.Sum64String(key)
}

func newBoxCache(ttl time.Duration) (*boxCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Hasher = xxhasher{}
	cfg.CleanWindow = ttl
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create box cache, cause %w", err)
	}
	return &boxCache{cache: cache}, nil
}

func boxKey(box int) string {
	return "box:" + strconv.Itoa(box)
}

func (b *boxCache) get(box int) ([]Item, bool) {
	buf, err := b.cache.Get(boxKey(box))
	if err != nil {
		return nil, false
	}
	var items []Item
	if err := json.Unmarshal(buf, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (b *boxCache) set(box int, items []Item) {
	buf, err := json.Marshal(items)
	if err != nil {
		return
	}
	b.cache.Set(boxKey(box), buf)
}

func (b *boxCache) forget(box int) {
	// ErrEntryNotFound just means nobody listed this box yet
	_ = b.cache.Delete(boxKey(box))
}

func (b *boxCache) close() {
	b.cache.Close()
}
