package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Store persists the set of known client names. Implementations must make
// Save durable before returning; a lost registration only surfaces much later
// as a confusing duplicate client.
type Store interface {
	Load() ([]string, error)
	Save(names []string) error
}

// FileStore keeps the registry as a JSON string array at a well-known path.
// The file is rewritten in full on every save.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted set. A missing file is an empty registry, not an
// error.
func (s *FileStore) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *FileStore) Save(names []string) error {
	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
