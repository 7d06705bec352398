package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const credentialDir = ".lapse-classify"

// ErrNoCredential is returned when a provider needs an API key and none is configured.
var ErrNoCredential = errors.New("API key not found")

// credentialEnv maps a provider name to the environment variable holding its key.
// Providers absent from the map need no credential.
var credentialEnv = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// EnvVar returns the credential environment variable for a provider,
// or "" when the provider does not use one.
func EnvVar(provider string) string {
	return credentialEnv[provider]
}

// GetAPIKey retrieves the API key for a provider from available sources.
// Priority order:
//  1. the provider's environment variable (GEMINI_API_KEY, OPENAI_API_KEY)
//  2. GPG-encrypted file at ~/.lapse-classify/<provider>.gpg
//
// Providers without a credential (ollama) return "", nil.
func GetAPIKey(provider string) (string, error) {
	envVar := EnvVar(provider)
	if envVar == "" {
		return "", nil
	}

	if key := os.Getenv(envVar); key != "" {
		log.Debug().Str("provider", provider).Msg("Using API key from environment variable")
		return key, nil
	}

	key, err := getFromGPG(provider)
	if err == nil && key != "" {
		log.Debug().Str("provider", provider).Msg("Using API key from GPG encrypted file")
		return key, nil
	}

	log.Debug().Err(err).Str("provider", provider).Msg("No API key available")
	return "", fmt.Errorf("%w: set %s or store it in ~/%s/%s.gpg", ErrNoCredential, envVar, credentialDir, provider)
}

// getFromGPG decrypts the API key from the provider's GPG-encrypted credentials file.
func getFromGPG(provider string) (string, error) {
	credPath, err := getCredentialPath(provider)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(credPath); os.IsNotExist(err) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")

	// Optional passphrase file for non-interactive use
	args := []string{"--decrypt", "--quiet"}

	passphrasePath, err := getPassphrasePath()
	if err == nil {
		fi, statErr := os.Stat(passphrasePath)
		if statErr == nil {
			mode := fi.Mode().Perm()
			if mode&0077 != 0 {
				log.Warn().
					Str("passphrase_file", passphrasePath).
					Str("permissions", fmt.Sprintf("%04o", mode)).
					Msg("Passphrase file has insecure permissions (should be 0600); skipping")
			} else {
				args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", passphrasePath)
			}
		}
	}

	args = append(args, credPath)
	cmd := exec.Command("gpg", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// getCredentialPath returns the full path to a provider's credentials file.
func getCredentialPath(provider string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, credentialDir, provider+".gpg"), nil
}

// getPassphrasePath returns the path to the GPG passphrase file, looked up
// next to the executable first and then in the working directory.
func getPassphrasePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	passphrasePath := filepath.Join(filepath.Dir(exe), ".gpg-passphrase")
	if _, err := os.Stat(passphrasePath); err == nil {
		return passphrasePath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	return filepath.Join(cwd, ".gpg-passphrase"), nil
}
