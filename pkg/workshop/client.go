package workshop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrPendingBuildExists is returned by CreatePendingBuild when the player
	// already holds a pending build for the character.
	ErrPendingBuildExists = errors.New("pending build already exists")

	// ErrBuildImmutable is returned by SaveBuild when the stored build is already valid.
	ErrBuildImmutable = errors.New("build is already valid and cannot be modified")
)

// createPendingScript claims the pending slot and writes the build hash in one
// atomic step. Returns 0 when the slot is held by a build that still exists; a
// slot pointing at a missing build hash is reclaimed.
//
// KEYS[1] pending key, KEYS[2] build key; ARGV[1] build id, ARGV[2] build key
// prefix, ARGV[3..] hash field/value pairs.
var createPendingScript = redis.NewScript(`
local holder = redis.call('GET', KEYS[1])
if holder and redis.call('EXISTS', ARGV[2] .. holder) == 1 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[2], unpack(ARGV, 3))
return 1
`)

// saveBuildScript updates an existing build hash. When the new state is valid it
// releases the pending slot (if this build holds it) and records the build in
// the valid set. Returns -1 if the build does not exist and 0 if it is already valid.
//
// KEYS[1] build key, KEYS[2] pending key, KEYS[3] valid set key;
// ARGV[1] build id, ARGV[2] new state, ARGV[3..] hash field/value pairs.
var saveBuildScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('HGET', KEYS[1], 'state') == 'valid' then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
if ARGV[2] == 'valid' then
	if redis.call('GET', KEYS[2]) == ARGV[1] then
		redis.call('DEL', KEYS[2])
	end
	redis.call('SADD', KEYS[3], ARGV[1])
end
return 1
`)

// Client provides instance-scoped Redis operations for the workshop.
// All keys and channels are namespaced with the instance name.
// The client is safe for concurrent use.
type Client struct {
	rdb          *redis.Client
	instanceName string

	// encodeEvent serializes builds for the events channel.
	encodeEvent func(any) ([]byte, error)
}

// NewClient creates a new workshop client for the specified instance.
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
		encodeEvent:  json.Marshal,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// InstanceName returns the namespace this client operates in.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// RedisClient exposes the underlying Redis client for scans.
func (c *Client) RedisClient() *redis.Client {
	return c.rdb
}

// PutCharacter writes a character to the catalog, replacing any previous version.
func (c *Client) PutCharacter(ctx context.Context, ch *Character) error {
	if err := ch.Validate(); err != nil {
		return fmt.Errorf("invalid character: %w", err)
	}

	hash, err := CharacterToHash(ch)
	if err != nil {
		return fmt.Errorf("failed to serialize character: %w", err)
	}

	key := CharacterKey(c.instanceName, ch.ID)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, hash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write character to Redis: %w", err)
	}

	return nil
}

// GetCharacter retrieves a character by ID.
// Returns (nil, redis.Nil) if the character doesn't exist.
func (c *Client) GetCharacter(ctx context.Context, characterID string) (*Character, error) {
	hashData, err := c.rdb.HGetAll(ctx, CharacterKey(c.instanceName, characterID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read character from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	ch, err := HashToCharacter(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize character: %w", err)
	}

	return ch, nil
}

// PutPlayer writes a player and replaces its unlocked character set.
func (c *Client) PutPlayer(ctx context.Context, p *Player) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid player: %w", err)
	}

	key := PlayerKey(c.instanceName, p.ID)
	unlockedKey := PlayerUnlockedKey(c.instanceName, p.ID)

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key, unlockedKey)
		pipe.HSet(ctx, key, PlayerToHash(p))
		if len(p.UnlockedCharacters) > 0 {
			members := make([]interface{}, len(p.UnlockedCharacters))
			for i, id := range p.UnlockedCharacters {
				members[i] = id
			}
			pipe.SAdd(ctx, unlockedKey, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write player to Redis: %w", err)
	}

	return nil
}

// GetPlayer retrieves a player with its unlocked characters (sorted).
// Returns (nil, redis.Nil) if the player doesn't exist.
func (c *Client) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	hashData, err := c.rdb.HGetAll(ctx, PlayerKey(c.instanceName, playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read player from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	unlocked, err := c.rdb.SMembers(ctx, PlayerUnlockedKey(c.instanceName, playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read unlocked characters: %w", err)
	}
	sort.Strings(unlocked)

	return HashToPlayer(hashData, unlocked), nil
}

// UnlockCharacter adds a character to a player's unlocked set.
func (c *Client) UnlockCharacter(ctx context.Context, playerID, characterID string) error {
	if err := c.rdb.SAdd(ctx, PlayerUnlockedKey(c.instanceName, playerID), characterID).Err(); err != nil {
		return fmt.Errorf("failed to unlock character: %w", err)
	}
	return nil
}

// CreatePendingBuild atomically claims the pending slot for the build's player
// and character and writes the build. Returns ErrPendingBuildExists if another
// pending build holds the slot; in that case nothing is written.
// Publishes the build to the build events channel after a successful write;
// a failed publish is logged and does not fail the call.
func (c *Client) CreatePendingBuild(ctx context.Context, b *Build) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid build: %w", err)
	}
	if b.State != BuildStatePending {
		return fmt.Errorf("invalid build: new builds must be pending, got %q", b.State)
	}

	hash, err := BuildToHash(b)
	if err != nil {
		return fmt.Errorf("failed to serialize build: %w", err)
	}

	keys := []string{
		PendingBuildKey(c.instanceName, b.PlayerID, b.CharacterID),
		BuildKey(c.instanceName, b.ID),
	}
	args := append([]interface{}{b.ID, BuildKeyPrefix(c.instanceName)}, flattenHash(hash)...)

	created, err := createPendingScript.Run(ctx, c.rdb, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to create pending build in Redis: %w", err)
	}
	if created == 0 {
		return ErrPendingBuildExists
	}

	c.publishBuild(ctx, b)
	return nil
}

// GetBuild retrieves a build by ID.
// Returns (nil, redis.Nil) if the build doesn't exist.
func (c *Client) GetBuild(ctx context.Context, buildID string) (*Build, error) {
	hashData, err := c.rdb.HGetAll(ctx, BuildKey(c.instanceName, buildID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read build from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	b, err := HashToBuild(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize build: %w", err)
	}

	return b, nil
}

// GetPendingBuild returns the pending build for a player and character.
// Returns (nil, redis.Nil) if there is none.
func (c *Client) GetPendingBuild(ctx context.Context, playerID, characterID string) (*Build, error) {
	buildID, err := c.rdb.Get(ctx, PendingBuildKey(c.instanceName, playerID, characterID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to read pending build index: %w", err)
	}

	b, err := c.GetBuild(ctx, buildID)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("pending index points to missing build %s: %w", buildID, redis.Nil)
		}
		return nil, err
	}

	return b, nil
}

// SaveBuild updates an existing build. Saving a valid build releases the
// pending slot and records the build as a completion, all in one atomic step.
// Returns redis.Nil if the build does not exist and ErrBuildImmutable if it is
// already valid.
func (c *Client) SaveBuild(ctx context.Context, b *Build) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid build: %w", err)
	}

	hash, err := BuildToHash(b)
	if err != nil {
		return fmt.Errorf("failed to serialize build: %w", err)
	}

	keys := []string{
		BuildKey(c.instanceName, b.ID),
		PendingBuildKey(c.instanceName, b.PlayerID, b.CharacterID),
		ValidBuildsKey(c.instanceName, b.PlayerID, b.CharacterID),
	}
	args := append([]interface{}{b.ID, string(b.State)}, flattenHash(hash)...)

	result, err := saveBuildScript.Run(ctx, c.rdb, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to save build in Redis: %w", err)
	}

	switch result {
	case -1:
		return fmt.Errorf("build %s: %w", b.ID, redis.Nil)
	case 0:
		return ErrBuildImmutable
	}

	if b.State == BuildStateValid {
		c.publishBuild(ctx, b)
	}
	return nil
}

// CountValidBuilds returns how many valid builds a player has for a character.
func (c *Client) CountValidBuilds(ctx context.Context, playerID, characterID string) (int, error) {
	n, err := c.rdb.SCard(ctx, ValidBuildsKey(c.instanceName, playerID, characterID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count valid builds: %w", err)
	}
	return int(n), nil
}

// ScanBuildIDs returns the IDs of all builds whose ID starts with prefix.
// An empty prefix matches every build.
func (c *Client) ScanBuildIDs(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := BuildKeyPrefix(c.instanceName)
	iter := c.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan builds: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// publishBuild announces a build change. Events are best-effort: the write has
// already committed, so failures are logged and never surface to the caller.
func (c *Client) publishBuild(ctx context.Context, b *Build) {
	buildJSON, err := c.encodeEvent(b)
	if err != nil {
		log.Printf("[Workshop] Failed to marshal build %s for event: %v", b.ID, err)
		return
	}

	if err := c.rdb.Publish(ctx, BuildEventsChannel(c.instanceName), buildJSON).Err(); err != nil {
		log.Printf("[Workshop] Failed to publish build %s event: %v", b.ID, err)
	}
}

// flattenHash turns a hash map into field/value pairs in stable field order.
func flattenHash(hash map[string]interface{}) []interface{} {
	fields := make([]string, 0, len(hash))
	for field := range hash {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	pairs := make([]interface{}, 0, len(hash)*2)
	for _, field := range fields {
		pairs = append(pairs, field, hash[field])
	}
	return pairs
}

// Subscription represents an active Pub/Sub subscription to build events.
// Caller must call Close() when done.
type Subscription struct {
	events <-chan *Build
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of build events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Build {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeBuildEvents subscribes to build creation and validation events for this instance.
func (c *Client) SubscribeBuildEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, BuildEventsChannel(c.instanceName))

	// Wait for the subscription to be confirmed so no event published after
	// this call returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to build events: %w", err)
	}

	eventsChan := make(chan *Build, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var b Build
				if err := json.Unmarshal([]byte(msg.Payload), &b); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal build event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &b:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
