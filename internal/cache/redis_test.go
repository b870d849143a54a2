package cache

import (
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/config"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Minute)
	defer c.Close()

	assert.NotNil(t, c)
	assert.Equal(t, time.Minute, c.roomsTTL)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:rooms", roomsKey())
	assert.Equal(t, "cache:room:101", roomKey(101))
}
