package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/chazuruo/agentdeck/internal/agents"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/logging"
)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0").
	URL string

	// KeyPrefix namespaces every key written by the store.
	KeyPrefix string

	// ConnectTimeout is the maximum time to wait for the initial ping.
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations.
	WriteTimeout time.Duration
}

// RedisStore implements Store on a Redis keyspace:
//
//	<prefix>:agent:<id>          string, agent YAML
//	<prefix>:agents              sorted set of ids, scored by creation time
//	<prefix>:versions:<agent>    hash of version id -> version YAML
//	<prefix>:drafts              hash of draft id -> wizard state YAML
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379/0"
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "agentdeck"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 3 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, &deckerrors.StoreError{Op: "open", Err: fmt.Errorf("%w: failed to parse Redis URL: %v", deckerrors.ErrInvalid, err), Backend: BackendRedis}
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, redisError("connect", err)
	}

	return &RedisStore{
		client: client,
		prefix: opts.KeyPrefix,
		logger: logging.OrDiscard(logger).With("store", BackendRedis),
	}, nil
}

func (s *RedisStore) agentKey(id string) string { return s.prefix + ":agent:" + id }
func (s *RedisStore) indexKey() string          { return s.prefix + ":agents" }
func (s *RedisStore) versionsKey(id string) string {
	return s.prefix + ":versions:" + id
}
func (s *RedisStore) draftsKey() string { return s.prefix + ":drafts" }

// ListRecords loads every indexed agent in creation order.
func (s *RedisStore) ListRecords(ctx context.Context) ([]agents.Agent, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, redisError("list", err)
	}
	if len(ids) == 0 {
		return []agents.Agent{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.agentKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, redisError("list", err)
	}

	records := make([]agents.Agent, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// indexed but deleted underneath us
			s.logger.Warn("index entry without record", "agent", ids[i])
			continue
		}
		a, err := agents.UnmarshalAgent([]byte(raw))
		if err != nil {
			return nil, &deckerrors.AgentError{Op: "list", Err: fmt.Errorf("%w: %v", deckerrors.ErrInvalid, err), ID: ids[i]}
		}
		records = append(records, *a)
	}
	sortRecords(records)
	return records, nil
}

// Get loads one agent.
func (s *RedisStore) Get(ctx context.Context, id string) (*agents.Agent, error) {
	if err := checkID("agent", id); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, s.agentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &deckerrors.AgentError{Op: "get", Err: deckerrors.ErrNotFound, ID: id}
		}
		return nil, redisError("get", err)
	}
	a, err := agents.UnmarshalAgent(raw)
	if err != nil {
		return nil, &deckerrors.AgentError{Op: "get", Err: fmt.Errorf("%w: %v", deckerrors.ErrInvalid, err), ID: id}
	}
	return a, nil
}

// Save stores the agent and indexes it by creation time.
func (s *RedisStore) Save(ctx context.Context, a *agents.Agent, opts SaveOptions) error {
	if err := checkID("agent", a.ID); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return &deckerrors.AgentError{Op: "save", Err: fmt.Errorf("%w: %v", deckerrors.ErrInvalid, err), ID: a.ID}
	}
	data, err := agents.MarshalAgent(a)
	if err != nil {
		return err
	}

	key := s.agentKey(a.ID)
	if opts.Force {
		err = s.client.Set(ctx, key, data, 0).Err()
	} else {
		var created bool
		created, err = s.client.SetNX(ctx, key, data, 0).Result()
		if err == nil && !created {
			return &deckerrors.AgentError{Op: "save", Err: deckerrors.ErrAlreadyExists, ID: a.ID}
		}
	}
	if err != nil {
		return redisError("save", err)
	}

	score := float64(a.CreatedAt.UnixMilli())
	if err := s.client.ZAdd(ctx, s.indexKey(), redis.Z{Score: score, Member: a.ID}).Err(); err != nil {
		return redisError("save", err)
	}
	s.logger.Debug("saved agent", "agent", a.ID)
	return nil
}

// Delete removes the agent, its index entry and its versions.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := checkID("agent", id); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.agentKey(id)).Result()
	if err != nil {
		return redisError("delete", err)
	}
	if n == 0 {
		return &deckerrors.AgentError{Op: "delete", Err: deckerrors.ErrNotFound, ID: id}
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.indexKey(), id)
		pipe.Del(ctx, s.versionsKey(id))
		return nil
	})
	if err != nil {
		return redisError("delete", err)
	}
	s.logger.Debug("deleted agent", "agent", id)
	return nil
}

func (s *RedisStore) exists(ctx context.Context, op, id string) error {
	n, err := s.client.Exists(ctx, s.agentKey(id)).Result()
	if err != nil {
		return redisError(op, err)
	}
	if n == 0 {
		return &deckerrors.AgentError{Op: op, Err: deckerrors.ErrNotFound, ID: id}
	}
	return nil
}

// SaveVersion stores a version in the agent's version hash.
func (s *RedisStore) SaveVersion(ctx context.Context, v agents.PromptVersion) error {
	if err := checkID("agent", v.AgentID); err != nil {
		return err
	}
	if err := checkID("version", v.ID); err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return deckerrors.Invalidf("%v", err)
	}
	if err := s.exists(ctx, "save version", v.AgentID); err != nil {
		return err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal version: %w", err)
	}
	if err := s.client.HSet(ctx, s.versionsKey(v.AgentID), v.ID, data).Err(); err != nil {
		return redisError("save version", err)
	}
	return nil
}

// ListVersions returns the agent's versions, newest first.
func (s *RedisStore) ListVersions(ctx context.Context, agentID string) ([]agents.PromptVersion, error) {
	if err := checkID("agent", agentID); err != nil {
		return nil, err
	}
	if err := s.exists(ctx, "list versions", agentID); err != nil {
		return nil, err
	}
	all, err := s.client.HGetAll(ctx, s.versionsKey(agentID)).Result()
	if err != nil {
		return nil, redisError("list versions", err)
	}
	versions := make([]agents.PromptVersion, 0, len(all))
	for id, raw := range all {
		var v agents.PromptVersion
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("%w: version %s: %v", deckerrors.ErrInvalid, id, err)
		}
		versions = append(versions, v)
	}
	sortVersions(versions)
	return versions, nil
}

// SaveDraft stores serialized wizard state.
func (s *RedisStore) SaveDraft(ctx context.Context, id string, data []byte) error {
	if err := checkID("draft", id); err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.draftsKey(), id, data).Err(); err != nil {
		return redisError("save draft", err)
	}
	return nil
}

// LoadDraft returns serialized wizard state.
func (s *RedisStore) LoadDraft(ctx context.Context, id string) ([]byte, error) {
	if err := checkID("draft", id); err != nil {
		return nil, err
	}
	data, err := s.client.HGet(ctx, s.draftsKey(), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("draft %q: %w", id, deckerrors.ErrNotFound)
		}
		return nil, redisError("load draft", err)
	}
	return data, nil
}

// ListDrafts summarizes every draft, most recently updated first.
func (s *RedisStore) ListDrafts(ctx context.Context) ([]DraftInfo, error) {
	all, err := s.client.HGetAll(ctx, s.draftsKey()).Result()
	if err != nil {
		return nil, redisError("list drafts", err)
	}
	drafts := make([]DraftInfo, 0, len(all))
	for id, raw := range all {
		info, err := parseDraftInfo(id, []byte(raw))
		if err != nil {
			s.logger.Warn("skipping unreadable draft", "draft", id, "error", err)
			continue
		}
		drafts = append(drafts, info)
	}
	sortDrafts(drafts)
	return drafts, nil
}

// DeleteDraft removes a draft.
func (s *RedisStore) DeleteDraft(ctx context.Context, id string) error {
	if err := checkID("draft", id); err != nil {
		return err
	}
	n, err := s.client.HDel(ctx, s.draftsKey(), id).Result()
	if err != nil {
		return redisError("delete draft", err)
	}
	if n == 0 {
		return fmt.Errorf("draft %q: %w", id, deckerrors.ErrNotFound)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisError(op string, err error) error {
	return &deckerrors.StoreError{Op: op, Err: fmt.Errorf("%w: %v", deckerrors.ErrStore, err), Backend: BackendRedis}
}
