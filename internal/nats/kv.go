package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/cued-ai/rehearsal-platform/internal/storage"
)

// BucketName is the KV bucket holding the conversation list and user memory.
const BucketName = "cued"

// KVStore adapts a JetStream key-value bucket to the storage.KV contract.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore opens the platform bucket, creating it on first run.
func NewKVStore(ctx context.Context, client *Client) (*KVStore, error) {
	js := client.JetStream()

	kv, err := js.KeyValue(ctx, BucketName)
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketNotFound) {
			return nil, fmt.Errorf("failed to open KV bucket: %w", err)
		}
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      BucketName,
			Description: "Conversation list and user memory",
			History:     1,
			Storage:     jetstream.FileStorage,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create KV bucket: %w", err)
		}
	}

	return &KVStore{kv: kv}, nil
}

// Get returns the stored value for key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	return entry.Value(), nil
}

// Put stores value under key. Last write wins; the bucket keeps no history.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

// Delete removes key from the bucket.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}
