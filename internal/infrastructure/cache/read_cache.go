package cache

import "github.com/ugmart/storefront/internal/domain/shared"

// ReadCache is implemented by RedisReadCache and InMemoryReadCache
type ReadCache = shared.ReadCache
