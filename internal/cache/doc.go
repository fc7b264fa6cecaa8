// Package cache provides a generic LRU cache with a soft entry limit.
//
//	c := cache.New[string, float64](512)
//	w := c.GetOrCreate("Hello|16", measure)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
