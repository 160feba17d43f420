// Package constants defines shared constant values used across the application
package constants

// PubSub provider types
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// SecurityStore backend types
const (
	SecurityStoreMemory = "memory"
	SecurityStoreRedis  = "redis"
)
