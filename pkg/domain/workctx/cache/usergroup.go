package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultUserGroupTTL  = 10 * time.Minute
	DefaultUserGroupSize = 1024
)

// GroupLoader fetches the member-user uids of one group on cache miss.
type GroupLoader func(ctx context.Context, groupUid string) (map[string]struct{}, error)

// UserGroupCache memoizes group membership with a TTL. Empty member
// sets are cached too, so groups with no members do not re-query on
// every ACL check.
type UserGroupCache struct {
	lru  *expirable.LRU[string, map[string]struct{}]
	load GroupLoader
}

func NewUserGroupCache(size int, ttl time.Duration, load GroupLoader) *UserGroupCache {
	if size <= 0 {
		size = DefaultUserGroupSize
	}
	if ttl <= 0 {
		ttl = DefaultUserGroupTTL
	}
	return &UserGroupCache{
		lru:  expirable.NewLRU[string, map[string]struct{}](size, nil, ttl),
		load: load,
	}
}

// Members returns the uids of the group's member users.
func (c *UserGroupCache) Members(ctx context.Context, groupUid string) (map[string]struct{}, error) {
	if members, ok := c.lru.Get(groupUid); ok {
		return members, nil
	}
	members, err := c.load(ctx, groupUid)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = map[string]struct{}{}
	}
	c.lru.Add(groupUid, members)
	return members, nil
}

// Clear drops all cached memberships.
func (c *UserGroupCache) Clear() {
	c.lru.Purge()
}
