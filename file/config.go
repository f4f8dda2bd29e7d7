// Package file loads the yaml configuration describing the local cache
// and the remote account to sync against.
package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`

	// Calendars lists the server calendars to mirror locally. A server
	// calendar without an entry here is skipped during sync.
	Calendars []CalendarConfig `yaml:"calendars"`
}

type CalendarConfig struct {
	// ID is the calendar's id on the server (the collection path for
	// CalDAV, the task list id for Google).
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type CacheConfig struct {
	// DB is the path of the sqlite database, default synctasks.db.
	DB string `yaml:"db"`
}

type ServerConfig struct {
	// Platform picks the remote backend: caldav or google.
	Platform string `yaml:"platform"`

	// CalDAV.
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`

	// Google Tasks.
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration file: %w", err)
	}

	if cfg.Cache.DB == "" {
		cfg.Cache.DB = "synctasks.db"
	}
	if cfg.Server.Platform == "" {
		cfg.Server.Platform = "caldav"
	}
	return &cfg, nil
}
