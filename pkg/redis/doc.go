// Package redis connects to Redis with startup retry and exposes a health
// probe. In this module Redis backs the shared tenant resolution cache, so
// a fleet of instances agrees on recently resolved tenants.
package redis
