package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const (
	dirPerms  = 0700
	filePerms = 0600
)

// FileStore keeps everything in one JSON file. Suited to a single user on a
// workstation; no locking, last writer wins.
type FileStore struct {
	path string
}

type fileData struct {
	Device struct {
		CN string `json:"cn"`
		CV string `json:"cv"`
	} `json:"device"`
	Answers map[string][]string `json:"answers"`
}

var _ Store = (*FileStore)(nil)

// NewFileStore uses the given file path, creating parent directories on the
// first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (*fileData, error) {
	var data fileData
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &data, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *FileStore) save(data *fileData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerms); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, filePerms)
}

func (s *FileStore) DeviceTokens() (string, string, error) {
	data, err := s.load()
	if err != nil {
		return "", "", err
	}
	return data.Device.CN, data.Device.CV, nil
}

func (s *FileStore) SaveDeviceTokens(cn, cv string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	data.Device.CN = cn
	data.Device.CV = cv
	return s.save(data)
}

func (s *FileStore) Answers(question string) ([]string, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data.Answers[question], nil
}

func (s *FileStore) SaveAnswer(question, answer string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	if data.Answers == nil {
		data.Answers = make(map[string][]string)
	}
	for _, existing := range data.Answers[question] {
		if existing == answer {
			return nil
		}
	}
	data.Answers[question] = append(data.Answers[question], answer)
	return s.save(data)
}
