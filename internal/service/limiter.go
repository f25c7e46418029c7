package service

import (
	"sync"

	"telegrab/internal/constants"
)

// ChatLimiter guarantees at most one in-flight pipeline per chat.
// Membership test-and-insert happens under one shard lock, so two
// guards can never be issued for the same chat. Sharded to avoid a
// single global lock.
type ChatLimiter struct {
	shards []*limiterShard
}

type limiterShard struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func NewChatLimiter() *ChatLimiter {
	shards := make([]*limiterShard, constants.DefaultChatLimiterShards)
	for i := range shards {
		shards[i] = &limiterShard{held: make(map[int64]struct{})}
	}
	return &ChatLimiter{shards: shards}
}

// TryAcquire attempts to claim the chat. It never blocks: a held chat
// returns false immediately and the caller answers "please wait".
func (l *ChatLimiter) TryAcquire(chatID int64) (*ChatGuard, bool) {
	shard := l.shardFor(chatID)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, exists := shard.held[chatID]; exists {
		return nil, false
	}
	shard.held[chatID] = struct{}{}

	return &ChatGuard{shard: shard, chatID: chatID}, true
}

func (l *ChatLimiter) shardFor(chatID int64) *limiterShard {
	idx := chatID % int64(len(l.shards))
	if idx < 0 {
		idx = -idx
	}
	return l.shards[idx]
}

// ChatGuard is the per-chat permit. Release is idempotent and removes
// the chat from the held set unconditionally.
type ChatGuard struct {
	shard  *limiterShard
	chatID int64
	once   sync.Once
}

func (g *ChatGuard) Release() {
	g.once.Do(func() {
		g.shard.mu.Lock()
		defer g.shard.mu.Unlock()
		delete(g.shard.held, g.chatID)
	})
}
