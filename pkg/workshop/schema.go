package workshop

import "fmt"

// Redis key pattern helpers
//
// Every key and channel is namespaced by instance name so several kitbash
// instances can share one Redis server.
//
// Key pattern: kitbash:{instance_name}:{entity}:{id}
// Channel pattern: kitbash:{instance_name}:{event_type}_events

// PlayerKey returns the Redis key for a player hash.
// Pattern: kitbash:{instance_name}:player:{player_id}
func PlayerKey(instanceName, playerID string) string {
	return fmt.Sprintf("kitbash:%s:player:%s", instanceName, playerID)
}

// PlayerUnlockedKey returns the Redis key for a player's unlocked character set.
// Pattern: kitbash:{instance_name}:player:{player_id}:unlocked
func PlayerUnlockedKey(instanceName, playerID string) string {
	return fmt.Sprintf("kitbash:%s:player:%s:unlocked", instanceName, playerID)
}

// CharacterKey returns the Redis key for a character hash.
// Pattern: kitbash:{instance_name}:character:{character_id}
func CharacterKey(instanceName, characterID string) string {
	return fmt.Sprintf("kitbash:%s:character:%s", instanceName, characterID)
}

// BuildKey returns the Redis key for a build hash.
// Pattern: kitbash:{instance_name}:build:{build_id}
func BuildKey(instanceName, buildID string) string {
	return fmt.Sprintf("kitbash:%s:build:%s", instanceName, buildID)
}

// BuildKeyPrefix returns the prefix shared by all build keys of an instance.
func BuildKeyPrefix(instanceName string) string {
	return fmt.Sprintf("kitbash:%s:build:", instanceName)
}

// PendingBuildKey returns the Redis key holding the ID of the single pending
// build for a player and character. Claimed with SETNX.
// Pattern: kitbash:{instance_name}:pending:{player_id}:{character_id}
func PendingBuildKey(instanceName, playerID, characterID string) string {
	return fmt.Sprintf("kitbash:%s:pending:%s:%s", instanceName, playerID, characterID)
}

// ValidBuildsKey returns the Redis key for the set of valid build IDs of a
// player and character.
// Pattern: kitbash:{instance_name}:valid:{player_id}:{character_id}
func ValidBuildsKey(instanceName, playerID, characterID string) string {
	return fmt.Sprintf("kitbash:%s:valid:%s:%s", instanceName, playerID, characterID)
}

// BuildEventsChannel returns the Pub/Sub channel name for build events.
// Pattern: kitbash:{instance_name}:build_events
func BuildEventsChannel(instanceName string) string {
	return fmt.Sprintf("kitbash:%s:build_events", instanceName)
}
