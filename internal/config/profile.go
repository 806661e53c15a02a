package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Profile is the signed-in user remembered between runs of the CLI, the
// counterpart of the web client's stored user record.
type Profile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// LoadProfile reads the profile from ~/.config/starnote/profile.json.
// It returns nil and no error when nobody is signed in.
func LoadProfile() (*Profile, error) {
	path, err := profilePath()
	if err != nil {
		return nil, err
	}
	return readProfile(path)
}

// SaveProfile writes the profile to ~/.config/starnote/profile.json with 0600 permissions.
func SaveProfile(p *Profile) error {
	dir, err := EnsureDataDir()
	if err != nil {
		return err
	}
	return writeProfile(filepath.Join(dir, "profile.json"), p)
}

// ClearProfile removes the stored profile. Missing files are ignored.
func ClearProfile() error {
	path, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func readProfile(path string) (*Profile, error) {
	//nolint:gosec // G304: path is derived from the user's data dir
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" {
		return nil, nil
	}
	return &p, nil
}

func writeProfile(path string, p *Profile) error {
	if p == nil || p.UserID == "" {
		return errors.New("profile: user_id is required")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func profilePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.json"), nil
}
