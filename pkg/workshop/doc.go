// Package workshop provides type-safe Go definitions and Redis schema patterns
// for kitbash builds and the character catalog.
//
// # Overview
//
// The workshop is the shared state behind the build engine: players, characters
// with their pieces, and builds. Every record is stored in Redis as a hash and
// every key is namespaced by instance name.
//
// # Core Concepts
//
// Characters own an ordered list of pieces. Pieces flagged as fake are decoys
// that never belong to the correct set.
//
// Builds are a player's attempt at a character. A build is created pending and
// becomes valid exactly once, after which it is immutable. At most one pending
// build may exist per player and character; the client enforces this with an
// atomic claim on a pending index key rather than a scan of existing builds.
//
// # Redis Schema
//
// Players:    kitbash:{instance_name}:player:{player_id}
// Unlocked:   kitbash:{instance_name}:player:{player_id}:unlocked
// Characters: kitbash:{instance_name}:character:{character_id}
// Builds:     kitbash:{instance_name}:build:{build_id}
// Pending:    kitbash:{instance_name}:pending:{player_id}:{character_id}
// Valid set:  kitbash:{instance_name}:valid:{player_id}:{character_id}
//
// Pub/Sub channel: kitbash:{instance_name}:build_events
//
// # Usage Example
//
//	client, err := workshop.NewClient(&redis.Options{Addr: "localhost:6379"}, "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	build := &workshop.Build{
//		ID:          uuid.New().String(),
//		PlayerID:    "p1",
//		CharacterID: "knight",
//		State:       workshop.BuildStatePending,
//		CreatedAtMs: time.Now().UnixMilli(),
//	}
//	if err := client.CreatePendingBuild(ctx, build); errors.Is(err, workshop.ErrPendingBuildExists) {
//		// validate the outstanding build first
//	}
package workshop
