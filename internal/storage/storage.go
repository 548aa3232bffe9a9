package storage

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	sessionFile     = "session.json"
	spreadsheetFile = "spreadsheet.json"
)

type Storage struct {
	dataDir string
}

// NewStorage uses dataDir (created if missing) for everything it writes.
func NewStorage(dataDir string) (*Storage, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("storage: empty data directory")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}
	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) Dir() string {
	return s.dataDir
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type session struct {
	BaseURL string        `json:"base_url"`
	Cookies []savedCookie `json:"cookies"`
	SavedAt time.Time     `json:"saved_at"`
}

// SaveSession stores the backend cookies so a later command can reuse the
// login. The file is only readable by the owner.
func (s *Storage) SaveSession(baseURL string, cookies []*http.Cookie) error {
	sess := session{BaseURL: baseURL, SavedAt: time.Now()}
	for _, c := range cookies {
		sess.Cookies = append(sess.Cookies, savedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling session: %w", err)
	}
	return s.writeAtomic(sessionFile, data, 0600)
}

// LoadSession returns the cookies saved for baseURL. A missing file, or one
// saved for another backend, yields no cookies and no error.
func (s *Storage) LoadSession(baseURL string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, sessionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading session: %w", err)
	}

	var sess session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("error parsing session: %w", err)
	}
	if sess.BaseURL != baseURL {
		return nil, nil
	}

	cookies := make([]*http.Cookie, 0, len(sess.Cookies))
	for _, c := range sess.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}

func (s *Storage) ClearSession() error {
	err := os.Remove(filepath.Join(s.dataDir, sessionFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing session: %w", err)
	}
	return nil
}

func (s *Storage) SaveSpreadsheetID(id string) error {
	data, err := json.MarshalIndent(map[string]string{"id": id}, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling spreadsheet ID: %w", err)
	}
	return s.writeAtomic(spreadsheetFile, data, 0644)
}

// LoadSpreadsheetID returns "" when no spreadsheet has been created yet.
func (s *Storage) LoadSpreadsheetID() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, spreadsheetFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("error reading spreadsheet ID: %w", err)
	}

	var saved map[string]string
	if err := json.Unmarshal(data, &saved); err != nil {
		return "", fmt.Errorf("error parsing spreadsheet ID: %w", err)
	}
	return saved["id"], nil
}

// writeAtomic writes to a temp file and renames it over name.
func (s *Storage) writeAtomic(name string, data []byte, perm os.FileMode) error {
	path := filepath.Join(s.dataDir, name)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, perm); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("error saving %s: %w", name, err)
	}
	return nil
}
