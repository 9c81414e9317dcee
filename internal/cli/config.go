package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("ARCADE_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("ARCADE_TOKEN"),
		TokenFile: getEnvOrDefault("ARCADE_TOKEN_FILE", defaultTokenFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // Public endpoints work without a token
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken checks that token is a well-formed JWT and writes it to the token file.
// The signature is left to the server.
func (c *Config) SaveToken(token string) error {
	if _, err := InspectToken(token); err != nil {
		return err
	}
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

// ClearToken removes the token file
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// TokenInfo is what the CLI can read from a token without verifying it
type TokenInfo struct {
	Subject   string
	Username  string
	ExpiresAt *time.Time
}

// InspectToken decodes a JWT's claims without checking its signature
func InspectToken(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("not a valid JWT: %w", err)
	}

	info := &TokenInfo{}
	for _, key := range []string{"userId", "_id", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			info.Subject = v
			break
		}
	}
	info.Username, _ = claims["username"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = &exp.Time
	}
	return info, nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arcade/token"
	}
	return filepath.Join(home, ".arcade", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
