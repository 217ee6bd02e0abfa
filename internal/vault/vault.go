// Package vault is the local secure key-value store backing profile data.
//
// Values are sealed with XChaCha20-Poly1305 before they reach the
// vault_entries table. A store built without a key keeps values in
// plaintext behind their own marker, so a value that happens to start with
// the sealed header still reads back as written.
package vault

import (
	"bytes"
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var (
	sealMagic  = []byte("LLV1")
	plainMagic = []byte("LLP1")

	ErrKeySize = errors.New("vault: key must be 32 bytes")
	ErrDecrypt = errors.New("vault: decrypt failed")
)

const keyInfo = "littlelemon-vault"

// Write is one mutation inside an atomic Apply.
type Write struct {
	Key    string
	Value  string
	Delete bool
}

func Set(key, value string) Write { return Write{Key: key, Value: value} }

func Delete(key string) Write { return Write{Key: key, Delete: true} }

type Store struct {
	db   *sql.DB
	aead cipher.AEAD
}

// DeriveKey stretches a secret into a vault key; salt is the installation id.
func DeriveKey(secret, salt []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("vault secret is required")
	}
	r := hkdf.New(sha256.New, secret, salt, []byte(keyInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	return key, nil
}

func New(db *sql.DB, key []byte) (*Store, error) {
	s := &Store{db: db}
	if len(key) == 0 {
		return s, nil
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrKeySize
	}
	s.aead = aead
	return s, nil
}

func (s *Store) Encrypted() bool { return s.aead != nil }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", false, err
	}
	var raw []byte
	err = s.db.QueryRowContext(ctx, `SELECT value FROM vault_entries WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get vault entry %q: %w", key, err)
	}
	plain, err := s.open(raw)
	if err != nil {
		return "", false, fmt.Errorf("open vault entry %q: %w", key, err)
	}
	return string(plain), true, nil
}

// Keys lists stored keys in order, sealed or not.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM vault_entries ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list vault keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan vault key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault keys: %w", err)
	}
	return keys, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Apply(ctx, Set(key, value))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.Apply(ctx, Delete(key))
}

// Apply commits every write or none of them.
func (s *Store) Apply(ctx context.Context, writes ...Write) error {
	if len(writes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin vault tx: %w", err)
	}
	for _, w := range writes {
		key, err := normalizeKey(w.Key)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if w.Delete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM vault_entries WHERE key = ?`, key); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("delete vault entry %q: %w", key, err)
			}
			continue
		}
		sealed, err := s.seal([]byte(w.Value))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seal vault entry %q: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO vault_entries(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, sealed); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set vault entry %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vault tx: %w", err)
	}
	return nil
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	if s.aead == nil {
		buf := make([]byte, 0, len(plainMagic)+len(plain))
		buf = append(buf, plainMagic...)
		return append(buf, plain...), nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ct := s.aead.Seal(nil, nonce, plain, nil)
	buf := make([]byte, 0, len(sealMagic)+len(nonce)+len(ct))
	buf = append(buf, sealMagic...)
	buf = append(buf, nonce...)
	buf = append(buf, ct...)
	return buf, nil
}

func (s *Store) open(in []byte) ([]byte, error) {
	if bytes.HasPrefix(in, plainMagic) {
		return in[len(plainMagic):], nil
	}
	if !bytes.HasPrefix(in, sealMagic) {
		return in, nil
	}
	if s.aead == nil {
		return nil, ErrDecrypt
	}
	body := in[len(sealMagic):]
	if len(body) < s.aead.NonceSize() {
		return nil, ErrDecrypt
	}
	nonce, ct := body[:s.aead.NonceSize()], body[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("vault key is required")
	}
	return key, nil
}
