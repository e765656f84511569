package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// jobsHashKey is the Redis hash holding the job set, one field per key.
const jobsHashKey = "trustchain:simjobs"

// RedisStore persists jobs in a Redis hash. This mirrors the durable queue
// the simulation originally ran on: jobs survive process restarts and are
// re-registered by Scheduler.Restore at startup.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func fieldName(key Key) string {
	return key.AssetID + "|" + key.Kind
}

// Put upserts a job under its key.
func (r *RedisStore) Put(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := r.client.HSet(ctx, jobsHashKey, fieldName(job.Key()), payload).Err(); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

// Delete removes a job; unknown keys are ignored.
func (r *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := r.client.HDel(ctx, jobsHashKey, fieldName(key)).Err(); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// Get fetches a job by key.
func (r *RedisStore) Get(ctx context.Context, key Key) (Job, error) {
	payload, err := r.client.HGet(ctx, jobsHashKey, fieldName(key)).Bytes()
	if err == redis.Nil {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("fetch job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return Job{}, fmt.Errorf("unmarshal job: %w", err)
	}
	return job, nil
}

// List returns every stored job.
func (r *RedisStore) List(ctx context.Context) ([]Job, error) {
	entries, err := r.client.HGetAll(ctx, jobsHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]Job, 0, len(entries))
	for field, payload := range entries {
		var job Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			return nil, fmt.Errorf("unmarshal job %s: %w", field, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Close releases the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
