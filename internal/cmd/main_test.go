package cmd

import (
	"os"
	"testing"

	"github.com/99designs/keyring"

	"github.com/merchantkit/merchant-cli/internal/config"
)

func TestMain(m *testing.M) {
	// Keep a shell's MERCHANT_OUTPUT=json from changing expected output.
	_ = os.Setenv("MERCHANT_OUTPUT", "text")

	cleanup := config.SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return keyring.NewArrayKeyring(nil), nil
	})
	code := m.Run()
	cleanup()
	os.Exit(code)
}
