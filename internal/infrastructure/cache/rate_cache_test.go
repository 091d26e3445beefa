package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateCache(t *testing.T) {
	c := NewRateCache(0)
	assert.Equal(t, 0, c.Size())

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	c.Put(date, 3950.25)
	assert.Equal(t, 1, c.Size())

	// any time of day maps onto the same calendar date
	v, ok := c.Get(date.Add(17 * time.Hour))
	assert.True(t, ok)
	assert.Equal(t, 3950.25, v)

	_, ok = c.Get(date.AddDate(0, 0, 1))
	assert.False(t, ok)

	c.Put(date, 3960.00)
	v, _ = c.Get(date)
	assert.Equal(t, 3960.00, v)
	assert.Equal(t, 1, c.Size())
}

func TestRateCacheExpiration(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	c := NewRateCache(time.Hour)
	c.now = func() time.Time { return now }

	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	c.Put(date, 4001.5)

	now = now.Add(30 * time.Minute)
	_, ok := c.Get(date)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok = c.Get(date)
	assert.False(t, ok)
}

func TestNilRateCache(t *testing.T) {
	var c *RateCache
	c.Put(time.Now(), 1)
	_, ok := c.Get(time.Now())
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}
