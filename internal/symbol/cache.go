package symbol

import (
	"sync"
	"time"

	"unitrade/internal/model"
)

// DefaultCacheTTL 符号元信息默认缓存时长。
const DefaultCacheTTL = 30 * time.Minute

type cacheEntry struct {
	info      *model.SymbolInfo
	expiresAt time.Time
}

// Cache 为符号元信息的 TTL 缓存。
// 不使用后台定时器，过期条目在下次读取时惰性清除。
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache 创建缓存，ttl<=0 时使用默认值。
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get 读取缓存，过期条目即刻删除并按未命中处理。
func (c *Cache) Get(exchange string, tradeType model.TradeType, symbol string) (*model.SymbolInfo, bool) {
	key := cacheKey(exchange, tradeType, symbol)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// 重新检查，期间可能已被写入新值。
		if cur, ok := c.entries[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.info, true
}

// Put 写入缓存。
func (c *Cache) Put(exchange string, tradeType model.TradeType, symbol string, info *model.SymbolInfo) {
	key := cacheKey(exchange, tradeType, symbol)

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		info:      info,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Len 返回当前条目数（含尚未被读取清除的过期条目）。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(exchange string, tradeType model.TradeType, symbol string) string {
	return exchange + "|" + string(tradeType) + "|" + symbol
}
