package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const (
	envKeyringBackend  = "MERCHANT_KEYRING_BACKEND"
	envKeyringPassword = "MERCHANT_KEYRING_PASSWORD"
	envCredentialsDir  = "MERCHANT_CREDENTIALS_DIR"
)

type backendMode int

const (
	backendAuto backendMode = iota
	backendFile
	backendSystem
)

// openKeyring is replaced in tests with an in-memory keyring.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

var userConfigDir = os.UserConfigDir

var stdinHasTTY = func() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// SetOpenKeyring replaces the keyring opener and returns a function that
// restores the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	prev := openKeyring
	openKeyring = fn
	return func() { openKeyring = prev }
}

func backendFromEnv() backendMode {
	switch strings.ToLower(firstNonBlankEnv(envKeyringBackend)) {
	case "file":
		return backendFile
	case "system", "os", "native":
		return backendSystem
	default:
		return backendAuto
	}
}

func keyringConfig() keyring.Config {
	cfg := keyring.Config{ServiceName: serviceName}
	mode := backendFromEnv()
	if mode == backendSystem {
		return cfg
	}

	// Auto mode may still fall through to the encrypted file backend.
	cfg.FileDir = keyringFileDir()
	cfg.FilePasswordFunc = keyringFilePassword
	if fileOnly(runtime.GOOS, mode, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

// fileOnly reports whether the file backend is the only usable one.
// Linux without a session bus has no secret service.
func fileOnly(goos string, mode backendMode, dbusAddr string) bool {
	switch mode {
	case backendFile:
		return true
	case backendSystem:
		return false
	}
	return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

func keyringFileDir() string {
	if dir := firstNonBlankEnv(envCredentialsDir); dir != "" {
		return filepath.Join(dir, "keyring")
	}
	if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
		return filepath.Join(dir, serviceName, "keyring")
	}
	if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
		return filepath.Join(home, ".config", serviceName, "keyring")
	}
	return filepath.Join(os.TempDir(), serviceName, "keyring")
}

func keyringFilePassword(prompt string) (string, error) {
	if pw := os.Getenv(envKeyringPassword); strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if !stdinHasTTY() {
		return "", fmt.Errorf("file keyring is locked: set %s for non-interactive use", envKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

func firstNonBlankEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}
