// Package config stores merchant API profiles in the OS keyring and
// resolves the settings a client is built from.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName    = "merchant-cli"
	defaultProfile = "default"

	// Keyring item keys. The default profile predates named profiles and
	// keeps its unprefixed key.
	accountKey        = "default"
	profilePrefix     = "profile:"
	profileIndexKey   = "profiles_index"
	currentProfileKey = "current_profile"
)

// Profile holds the connection details for one merchant API.
type Profile struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
	// RedactKeys are extra body/query field names to hide in debug logs.
	RedactKeys []string `json:"redact_keys,omitempty"`
}

// ErrNotConfigured is returned when no profile is stored.
var ErrNotConfigured = errors.New("merchant API not configured - run 'merchant auth login' first")

func profileKey(name string) string {
	if name == "" || name == defaultProfile {
		return accountKey
	}
	return profilePrefix + name
}

func orDefault(name string) string {
	if name == "" {
		return defaultProfile
	}
	return name
}

// store is one opened keyring.
type store struct {
	ring keyring.Keyring
}

func openStore() (*store, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &store{ring: ring}, nil
}

// get returns the raw item data; ok is false when the key is absent.
func (s *store) get(key string) (data []byte, ok bool, err error) {
	item, err := s.ring.Get(key)
	switch {
	case errors.Is(err, keyring.ErrKeyNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to read %s from keyring: %w", key, err)
	}
	return item.Data, true, nil
}

func (s *store) put(key string, data []byte) error {
	if err := s.ring.Set(keyring.Item{Key: key, Data: data}); err != nil {
		return fmt.Errorf("failed to write %s to keyring: %w", key, err)
	}
	return nil
}

// names returns the profile index; setNames drops blanks and duplicates.
func (s *store) names() ([]string, error) {
	data, ok, err := s.get(profileIndexKey)
	if err != nil || !ok {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile index: %w", err)
	}
	return names, nil
}

func (s *store) setNames(names []string) error {
	clean := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" && !slices.Contains(clean, n) {
			clean = append(clean, n)
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	return s.put(profileIndexKey, data)
}

func (s *store) current() (string, error) {
	data, ok, err := s.get(currentProfileKey)
	if err != nil || !ok {
		return defaultProfile, err
	}
	return string(data), nil
}

// SaveProfile stores p under name and makes it the current profile.
func SaveProfile(name string, p Profile) error {
	name = orDefault(name)
	s, err := openStore()
	if err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.put(profileKey(name), data); err != nil {
		return err
	}

	names, err := s.names()
	if err != nil {
		return err
	}
	if err := s.setNames(append(names, name)); err != nil {
		return err
	}
	return s.put(currentProfileKey, []byte(name))
}

// LoadProfile retrieves a named profile.
func LoadProfile(name string) (Profile, error) {
	s, err := openStore()
	if err != nil {
		return Profile{}, err
	}

	data, ok, err := s.get(profileKey(name))
	if err != nil {
		return Profile{}, err
	}
	if !ok {
		return Profile{}, ErrNotConfigured
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return p, nil
}

// LoadCurrentProfile loads the profile named by MERCHANT_PROFILE, or the
// current profile when that is unset.
func LoadCurrentProfile() (string, Profile, error) {
	name := firstNonBlankEnv(EnvProfile)
	if name == "" {
		var err error
		if name, err = CurrentProfile(); err != nil {
			return "", Profile{}, err
		}
	}
	p, err := LoadProfile(name)
	return name, p, err
}

// DeleteProfile removes a stored profile. Removing a missing profile is
// not an error. When the current profile is removed, the first remaining
// profile becomes current.
func DeleteProfile(name string) error {
	name = orDefault(name)
	s, err := openStore()
	if err != nil {
		return err
	}

	if err := s.ring.Remove(profileKey(name)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove profile: %w", err)
	}

	names, err := s.names()
	if err != nil {
		return err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == name })
	if err := s.setNames(names); err != nil {
		return err
	}

	current, err := s.current()
	if err != nil || current != name {
		return nil
	}
	next := defaultProfile
	if len(names) > 0 {
		next = names[0]
	}
	return s.put(currentProfileKey, []byte(next))
}

// ListProfiles returns the known profile names.
func ListProfiles() ([]string, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}

	names, err := s.names()
	if err != nil || len(names) > 0 {
		return names, err
	}
	// A default profile saved before the index existed.
	if _, ok, _ := s.get(accountKey); ok {
		return []string{defaultProfile}, nil
	}
	return []string{}, nil
}

// CurrentProfile returns the active profile name.
func CurrentProfile() (string, error) {
	s, err := openStore()
	if err != nil {
		return "", err
	}
	return s.current()
}

// SetCurrentProfile sets the active profile name.
func SetCurrentProfile(name string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	return s.put(currentProfileKey, []byte(orDefault(name)))
}
