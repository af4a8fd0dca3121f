package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserLoginKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserLoginKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// DirectionMonitorChannel returns the Redis PubSub channel carrying live
// cheat-flag events for a direction.
func (r *CacheKeyStruct) DirectionMonitorChannel(directionID string) string {
	return fmt.Sprintf("direction:%s:monitor", directionID)
}

var CacheKey = NewCacheKeyStruct()
