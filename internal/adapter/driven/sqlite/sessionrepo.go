package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port. It keeps
// the token and username as two named rows, mirroring the browser console's
// localStorage keys. Values are encrypted with AES-256-GCM when a key is set.
type SessionRepo struct {
	db     *DB
	key    []byte // 32-byte AES-256 key; nil stores values in plain text.
	logger *slog.Logger
}

// NewSessionRepo creates a new SessionRepo. key must be 32 bytes for
// AES-256-GCM, or nil to store the session unencrypted.
func NewSessionRepo(db *DB, key []byte, logger *slog.Logger) *SessionRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRepo{db: db, key: key, logger: logger}
}

// Load returns the persisted session. A missing row yields the zero Session.
func (r *SessionRepo) Load(ctx context.Context) (model.Session, error) {
	token, err := r.get(ctx, driven.SessionKeyToken)
	if err != nil {
		return model.Session{}, err
	}
	username, err := r.get(ctx, driven.SessionKeyUsername)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: token, Username: username}, nil
}

// Save replaces both session values in one transaction.
func (r *SessionRepo) Save(ctx context.Context, s model.Session) error {
	if r.key == nil {
		r.logger.WarnContext(ctx, "storing session token unencrypted; set DETECTPANEL_SECRET_KEY to encrypt it")
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, kv := range []struct{ name, value string }{
		{driven.SessionKeyToken, s.Token},
		{driven.SessionKeyUsername, s.Username},
	} {
		if err := r.set(ctx, tx, kv.name, kv.value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save session: %w", err)
	}
	return nil
}

// Clear removes both session values. Clearing an empty store is not an error.
func (r *SessionRepo) Clear(ctx context.Context) error {
	const query = `DELETE FROM session_values WHERE name IN (?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query, driven.SessionKeyToken, driven.SessionKeyUsername)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepo) set(ctx context.Context, tx *sql.Tx, name, plaintext string) error {
	value, encrypted := plaintext, false
	if r.key != nil {
		var err error
		if value, err = r.encrypt(plaintext); err != nil {
			return fmt.Errorf("encrypt %q: %w", name, err)
		}
		encrypted = true
	}

	const query = `INSERT OR REPLACE INTO session_values (name, value, encrypted, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
	if _, err := tx.ExecContext(ctx, query, name, value, encrypted); err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}
	return nil
}

// get returns ("", nil) if the row does not exist.
func (r *SessionRepo) get(ctx context.Context, name string) (string, error) {
	const query = `SELECT value, encrypted FROM session_values WHERE name = ?`
	var (
		value     string
		encrypted bool
	)
	err := r.db.Reader.QueryRowContext(ctx, query, name).Scan(&value, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", name, err)
	}

	if !encrypted {
		return value, nil
	}
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	plaintext, err := r.decrypt(value)
	if err != nil {
		return "", fmt.Errorf("decrypt %q: %w", name, err)
	}
	return plaintext, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *SessionRepo) encrypt(plaintext string) (string, error) {
	gcm, err := newGCM(r.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *SessionRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := newGCM(r.key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
