package storage

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/crypto"
)

// EncryptedStorage seals values before handing them to the wrapped backend.
type EncryptedStorage struct {
	next Backend
	enc  crypto.Encrypter
}

// NewEncryptedStorage wraps next with enc.
func NewEncryptedStorage(next Backend, enc crypto.Encrypter) *EncryptedStorage {
	return &EncryptedStorage{next: next, enc: enc}
}

func (e *EncryptedStorage) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := e.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := e.enc.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return plain, nil
}

func (e *EncryptedStorage) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := e.enc.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return e.next.Set(ctx, key, sealed)
}

func (e *EncryptedStorage) Ping(ctx context.Context) error { return e.next.Ping(ctx) }

func (e *EncryptedStorage) Close() error { return e.next.Close() }
