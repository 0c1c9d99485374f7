package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type credentialFile struct {
	APIKey string `toml:"api_key"`
}

// FileCredentialStore keeps the key in a TOML file readable only by the owner.
type FileCredentialStore struct {
	path string
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Load returns "" when nothing has been saved yet.
func (s *FileCredentialStore) Load() (string, error) {
	var f credentialFile
	if _, err := toml.DecodeFile(s.path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read credential file failed: %w", err)
	}
	return f.APIKey, nil
}

func (s *FileCredentialStore) Save(key string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir failed: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open credential file failed: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(credentialFile{APIKey: key}); err != nil {
		return fmt.Errorf("write credential file failed: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential file failed: %w", err)
	}
	return nil
}

// MemoryCredentialStore is a process-local store, used when no file is wanted.
type MemoryCredentialStore struct {
	key string
}

func (s *MemoryCredentialStore) Load() (string, error) { return s.key, nil }

func (s *MemoryCredentialStore) Save(key string) error {
	s.key = key
	return nil
}

func (s *MemoryCredentialStore) Clear() error {
	s.key = ""
	return nil
}
