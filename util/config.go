package util

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var embeddedConfig []byte

const (
	Name       = "feedsync"
	envPrefix  = "FEEDSYNC_"
	configFile = "config.yaml"
)

// AppConfig is the application configuration
type AppConfig struct {
	Conf struct {
		ApiBaseURL        string `yaml:"api_base_url" json:"apiBaseUrl" validate:"required,url"`
		PushURL           string `yaml:"push_url" json:"pushUrl" validate:"omitempty,url"`
		ActorId           string `yaml:"actor_id" json:"actorId" validate:"required"`
		AuthToken         string `yaml:"auth_token" json:"-"`
		PageSize          int    `yaml:"page_size" json:"pageSize" validate:"min=1,max=100"`
		GraceWindowMs     int    `yaml:"grace_window_ms" json:"graceWindowMs" validate:"min=0"`
		RecentLikersLimit int    `yaml:"recent_likers_limit" json:"recentLikersLimit" validate:"eq=5"`
		HttpPort          int    `yaml:"http_port" json:"httpPort" validate:"min=1,max=65535"`
		HttpHost          string `yaml:"http_host" json:"httpHost" validate:"required"`
		WithInspect       bool   `yaml:"with_inspect" json:"withInspect"`
		WithJournald      bool   `yaml:"with_journald" json:"withJournald"`
		BackupDb          string `yaml:"backup_db" json:"backupDb"`
		LogFile           string `yaml:"log_file" json:"logFile"`
		RequestTimeoutMs  int    `yaml:"request_timeout_ms" json:"requestTimeoutMs" validate:"min=100"`
	}
}

func (c *AppConfig) GraceWindow() time.Duration {
	return time.Duration(c.Conf.GraceWindowMs) * time.Millisecond
}

func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Conf.RequestTimeoutMs) * time.Millisecond
}

// ReadConf loads config.yaml from the working directory or the user config
// dir, falling back to the embedded defaults, then applies .env and
// FEEDSYNC_* overrides.
func ReadConf() (*AppConfig, error) {
	return ReadConfFrom("")
}

// ReadConfFrom is ReadConf with an explicit file. An empty path resolves the
// default locations.
func ReadConfFrom(path string) (*AppConfig, error) {
	c := &AppConfig{}
	if err := yaml.Unmarshal(embeddedConfig, c); err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}

	if path == "" {
		path = ResolveFilePath(configFile)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		log.Printf("No config file at %s, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(c.Conf); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func (c *AppConfig) applyEnv() error {
	strs := map[string]*string{
		"API_BASE_URL": &c.Conf.ApiBaseURL,
		"PUSH_URL":     &c.Conf.PushURL,
		"ACTOR_ID":     &c.Conf.ActorId,
		"AUTH_TOKEN":   &c.Conf.AuthToken,
		"HTTP_HOST":    &c.Conf.HttpHost,
		"BACKUP_DB":    &c.Conf.BackupDb,
		"LOG_FILE":     &c.Conf.LogFile,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PAGE_SIZE":          &c.Conf.PageSize,
		"GRACE_WINDOW_MS":    &c.Conf.GraceWindowMs,
		"HTTP_PORT":          &c.Conf.HttpPort,
		"REQUEST_TIMEOUT_MS": &c.Conf.RequestTimeoutMs,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"WITH_INSPECT":  &c.Conf.WithInspect,
		"WITH_JOURNALD": &c.Conf.WithJournald,
	}
	for key, dst := range bools {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, key, err)
			}
			*dst = b
		}
	}
	return nil
}

// ResolveFilePath prefers a file in the working directory and otherwise
// points into ~/.config/feedsync, creating that directory.
func ResolveFilePath(name string) string {
	if _, err := os.Stat(name); err == nil {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	dir := filepath.Join(home, ".config", Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Cannot create %s: %v", dir, err)
		return name
	}
	return filepath.Join(dir, name)
}
