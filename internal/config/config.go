package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "LABDESK"

// Config holds everything labdesk reads from the environment.
type Config struct {
	APIURL                 string
	DBPath                 string
	Timeout                time.Duration
	PollInterval           time.Duration
	LogCalls               bool
	Profile                string
	CookieHashKey          string
	CookieBlockKey         string
	DefaultTeacherReviewer string
	PageSize               int
}

// Dir is the per-user directory holding the session database and key file.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".labdesk"
	}
	return filepath.Join(home, ".labdesk")
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("api_url", "http://localhost:8000/api")
	v.SetDefault("db_path", filepath.Join(Dir(), "labdesk.db"))
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("poll_interval", 30*time.Second)
	v.SetDefault("log_calls", false)
	v.SetDefault("profile", "default")
	v.SetDefault("cookie_hash_key", "")
	v.SetDefault("cookie_block_key", "")
	v.SetDefault("default_teacher_reviewer", "梁红茹")
	v.SetDefault("page_size", 10)
}

// Load reads configuration from defaults, optional .env files and
// LABDESK_* environment variables. Missing .env files are ignored;
// the first file to exist wins for any given variable.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", filepath.Join(Dir(), ".env")}
	}
	for _, path := range envFiles {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return Config{}, fmt.Errorf("loading %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("checking %s: %w", path, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		APIURL:                 strings.TrimRight(v.GetString("api_url"), "/"),
		DBPath:                 v.GetString("db_path"),
		Timeout:                v.GetDuration("timeout"),
		PollInterval:           v.GetDuration("poll_interval"),
		LogCalls:               v.GetBool("log_calls"),
		Profile:                v.GetString("profile"),
		CookieHashKey:          v.GetString("cookie_hash_key"),
		CookieBlockKey:         v.GetString("cookie_block_key"),
		DefaultTeacherReviewer: v.GetString("default_teacher_reviewer"),
		PageSize:               v.GetInt("page_size"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url %q must start with http:// or https://", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	// Zero turns review-queue polling off.
	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative, got %s", c.PollInterval)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.Profile == "" {
		return fmt.Errorf("profile must not be empty")
	}
	return nil
}

// CookieKeys returns the hash and block keys used to encode stored cookies.
// Keys come from the environment when set (hex encoded); otherwise they are
// read from keyFile, which is created with fresh random keys on first use.
func (c Config) CookieKeys(keyFile string) (hashKey, blockKey []byte, err error) {
	if c.CookieHashKey != "" {
		if hashKey, err = hex.DecodeString(c.CookieHashKey); err != nil {
			return nil, nil, fmt.Errorf("decoding cookie_hash_key: %w", err)
		}
		if c.CookieBlockKey != "" {
			if blockKey, err = hex.DecodeString(c.CookieBlockKey); err != nil {
				return nil, nil, fmt.Errorf("decoding cookie_block_key: %w", err)
			}
		}
		return hashKey, blockKey, nil
	}

	data, err := os.ReadFile(keyFile)
	if err == nil {
		return parseKeyFile(data)
	}
	if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("reading key file: %w", err)
	}

	hashKey = securecookie.GenerateRandomKey(64)
	blockKey = securecookie.GenerateRandomKey(32)
	if hashKey == nil || blockKey == nil {
		return nil, nil, fmt.Errorf("generating cookie keys")
	}
	if err := os.MkdirAll(filepath.Dir(keyFile), 0700); err != nil {
		return nil, nil, fmt.Errorf("creating key directory: %w", err)
	}
	content := hex.EncodeToString(hashKey) + "\n" + hex.EncodeToString(blockKey) + "\n"
	if err := os.WriteFile(keyFile, []byte(content), 0600); err != nil {
		return nil, nil, fmt.Errorf("writing key file: %w", err)
	}
	return hashKey, blockKey, nil
}

func parseKeyFile(data []byte) ([]byte, []byte, error) {
	lines := strings.Fields(string(data))
	if len(lines) != 2 {
		return nil, nil, fmt.Errorf("key file: expected 2 keys, found %d", len(lines))
	}
	hashKey, err := hex.DecodeString(lines[0])
	if err != nil {
		return nil, nil, fmt.Errorf("key file hash key: %w", err)
	}
	blockKey, err := hex.DecodeString(lines[1])
	if err != nil {
		return nil, nil, fmt.Errorf("key file block key: %w", err)
	}
	return hashKey, blockKey, nil
}
