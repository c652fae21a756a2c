package voice

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// DefaultCacheCapacity 语音缓存默认容量
const DefaultCacheCapacity = 1000

// SpeechCache 进程内语音合成缓存，按插入顺序FIFO淘汰
// 读取不刷新淘汰优先级，这是FIFO而非LRU
type SpeechCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]byte
	order    []string
}

// NewSpeechCache 创建指定容量的缓存，capacity<=0时使用默认容量
func NewSpeechCache(capacity int) *SpeechCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &SpeechCache{
		capacity: capacity,
		entries:  make(map[string][]byte, capacity),
	}
}

// cacheKey 基于(文本, 音色, 语速)的抗碰撞键
func cacheKey(text, voice string, speed float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f", text, voice, speed)))
	return hex.EncodeToString(sum[:])
}

// Get 查询缓存，命中返回音频字节
func (c *SpeechCache) Get(text, voice string, speed float64) ([]byte, bool) {
	key := cacheKey(text, voice, speed)

	c.mu.Lock()
	defer c.mu.Unlock()

	audio, ok := c.entries[key]
	return audio, ok
}

// Set 写入缓存；键已存在时覆盖值但保留其插入位置
// 容量已满时淘汰最早插入的条目
func (c *SpeechCache) Set(text, voice string, speed float64, audio []byte) {
	key := cacheKey(text, voice, speed)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = audio
		return
	}

	if len(c.entries) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = audio
	c.order = append(c.order, key)
}

// Len 当前条目数
func (c *SpeechCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
