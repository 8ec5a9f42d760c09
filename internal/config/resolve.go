package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ResolveClientConfig.
const (
	EnvBaseURL    = "MERCHANT_BASE_URL"
	EnvToken      = "MERCHANT_TOKEN"
	EnvProfile    = "MERCHANT_PROFILE"
	EnvDebug      = "MERCHANT_DEBUG"
	EnvRedactKeys = "MERCHANT_REDACT_KEYS"
)

// ErrNoBaseURL is returned when no source supplies a base URL.
var ErrNoBaseURL = errors.New("base URL not configured")

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	Profile    string
	BaseURL    string
	Token      string
	RedactKeys []string
	Debug      bool
}

// Overrides are values given on the command line. Empty fields are unset.
type Overrides struct {
	Profile string
	BaseURL string
	Token   string
}

// LoadDotEnv loads variables from the given files, or ./.env when none are
// given. Variables already set in the environment win. A missing file is
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// ResolveClientConfig merges the stored profile, the environment and
// overrides, in increasing order of precedence.
func ResolveClientConfig(o Overrides) (ClientConfig, error) {
	var cfg ClientConfig

	name := o.Profile
	if name == "" {
		name = firstNonBlankEnv(EnvProfile)
	}
	var (
		p   Profile
		err error
	)
	if name != "" {
		p, err = LoadProfile(name)
	} else {
		name, p, err = LoadCurrentProfile()
	}
	switch {
	case err == nil:
		cfg.Profile = name
		cfg.BaseURL = p.BaseURL
		cfg.Token = p.Token
		cfg.RedactKeys = p.RedactKeys
	case errors.Is(err, ErrNotConfigured):
		if o.Profile != "" {
			return ClientConfig{}, fmt.Errorf("profile %q not found", o.Profile)
		}
	default:
		// An unreadable keyring only matters when nothing else supplies the settings.
		if o.BaseURL == "" && firstNonBlankEnv(EnvBaseURL) == "" {
			return ClientConfig{}, err
		}
	}

	if v := firstNonBlankEnv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := firstNonBlankEnv(EnvToken); v != "" {
		cfg.Token = v
	}
	if v := firstNonBlankEnv(EnvRedactKeys); v != "" {
		cfg.RedactKeys = append(cfg.RedactKeys, splitList(v)...)
	}
	if v := firstNonBlankEnv(EnvDebug); v != "" {
		cfg.Debug, _ = strconv.ParseBool(v)
	}

	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.Token != "" {
		cfg.Token = o.Token
	}

	if cfg.BaseURL == "" {
		return ClientConfig{}, fmt.Errorf("%w (set %s, run 'merchant auth login', or pass --base-url)", ErrNoBaseURL, EnvBaseURL)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
