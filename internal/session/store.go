package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/kindle-notebook/internal/crypto"
	"github.com/mrlokans/kindle-notebook/internal/entities"
)

const (
	// EnvEncryptionKey holds a base64 AES-256 key.
	EnvEncryptionKey = "SESSION_ENCRYPTION_KEY"
	// EnvPassphrase holds a passphrase the key is derived from.
	EnvPassphrase = "SESSION_PASSPHRASE"

	// DefaultKeyFileName is created in the home directory when no key is configured.
	DefaultKeyFileName = ".kindle-notebook-key"
)

// KeyConfig selects how session cookies are encrypted.
// Priority: EncryptionKey, Passphrase, environment, key file.
type KeyConfig struct {
	EncryptionKey string
	Passphrase    string
	KeyFilePath   string
}

// Store persists sessions with their cookies encrypted at rest.
type Store struct {
	db         *gorm.DB
	encryptor  *crypto.Encryptor
	passphrase string
}

type storedCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

func NewStore(db *gorm.DB, cfg KeyConfig) (*Store, error) {
	if err := db.AutoMigrate(&entities.KindleSession{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session schema: %w", err)
	}

	s := &Store{db: db}

	passphrase := cfg.Passphrase
	key := cfg.EncryptionKey
	if key == "" && passphrase == "" {
		key = os.Getenv(EnvEncryptionKey)
		passphrase = os.Getenv(EnvPassphrase)
	}

	switch {
	case key != "":
		enc, err := crypto.NewEncryptorFromBase64(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create encryptor: %w", err)
		}
		s.encryptor = enc
	case passphrase != "":
		s.passphrase = passphrase
	default:
		fileKey, err := loadOrCreateKeyFile(cfg.KeyFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
		}
		enc, err := crypto.NewEncryptorFromBase64(fileKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create encryptor: %w", err)
		}
		s.encryptor = enc
	}

	return s, nil
}

func loadOrCreateKeyFile(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, DefaultKeyFileName)
	}

	if data, err := os.ReadFile(path); err == nil {
		return string(data), nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(key), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", path, err)
	}
	log.Printf("[SESSION] generated new encryption key at %s", path)
	return key, nil
}

// encryptorFor returns the static encryptor, or derives one from the
// passphrase and the row's salt.
func (s *Store) encryptorFor(salt string) (*crypto.Encryptor, error) {
	if s.encryptor != nil {
		return s.encryptor, nil
	}
	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	return crypto.NewEncryptorFromPassphrase(s.passphrase, raw)
}

// Save stores or replaces the session for its region.
func (s *Store) Save(sess *Session) error {
	if !sess.Authenticated() || sess.offline {
		return ErrNoCookies
	}

	cookies := make([]storedCookie, 0, len(sess.Cookies))
	for _, c := range sess.Cookies {
		cookies = append(cookies, storedCookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
	payload, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	salt := ""
	if s.encryptor == nil {
		raw, err := crypto.GenerateSalt()
		if err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(raw)
	}
	enc, err := s.encryptorFor(salt)
	if err != nil {
		return err
	}
	sealed, err := enc.Seal(payload, sess.Region)
	if err != nil {
		return fmt.Errorf("failed to encrypt cookies: %w", err)
	}

	row := &entities.KindleSession{Region: sess.Region}
	result := s.db.Where("region = ?", sess.Region).
		Assign(map[string]interface{}{
			"cookies":      sealed,
			"salt":         salt,
			"user_agent":   sess.UserAgent,
			"cookie_count": len(cookies),
			"updated_at":   time.Now(),
		}).
		FirstOrCreate(row)
	if result.Error != nil {
		return fmt.Errorf("failed to save session: %w", result.Error)
	}
	return nil
}

// Load returns the decrypted session for a region, or ErrSessionNotFound.
func (s *Store) Load(region string) (*Session, error) {
	var row entities.KindleSession
	if err := s.db.Where("region = ?", region).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, region)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	enc, err := s.encryptorFor(row.Salt)
	if err != nil {
		return nil, err
	}
	payload, err := enc.Open(row.Cookies, row.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session for %s: %w", region, err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cookies: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}

	return &Session{
		Region:     row.Region,
		Cookies:    cookies,
		UserAgent:  row.UserAgent,
		ImportedAt: row.UpdatedAt,
	}, nil
}

// List returns stored sessions without decrypting them.
func (s *Store) List() ([]entities.KindleSession, error) {
	var rows []entities.KindleSession
	if err := s.db.Order("region").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return rows, nil
}

// Delete removes the session for a region. Deleting a missing session is not an error.
func (s *Store) Delete(region string) error {
	if err := s.db.Where("region = ?", region).Delete(&entities.KindleSession{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Touch records that the session was used.
func (s *Store) Touch(region string) error {
	now := time.Now()
	err := s.db.Model(&entities.KindleSession{}).
		Where("region = ?", region).
		Update("last_used_at", now).Error
	if err != nil {
		return fmt.Errorf("failed to update last used: %w", err)
	}
	return nil
}
