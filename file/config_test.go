package file

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synctasks.yml")
	content := `cache:
  db: /tmp/tasks.db
server:
  platform: caldav
  endpoint: https://dav.example.com/
  username: user
  password: secret
calendars:
  - id: /calendars/user/tasks/
    name: Tasks
  - id: /calendars/user/chores/
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cache.DB != "/tmp/tasks.db" {
		t.Errorf("Cache.DB = %q, want %q", cfg.Cache.DB, "/tmp/tasks.db")
	}
	if cfg.Server.Endpoint != "https://dav.example.com/" {
		t.Errorf("Server.Endpoint = %q", cfg.Server.Endpoint)
	}
	if len(cfg.Calendars) != 2 {
		t.Fatalf("len(Calendars) = %d, want 2", len(cfg.Calendars))
	}
	if cfg.Calendars[0].ID != "/calendars/user/tasks/" || cfg.Calendars[0].Name != "Tasks" {
		t.Errorf("Calendars[0] = %+v", cfg.Calendars[0])
	}
	if cfg.Calendars[1].Name != "" {
		t.Errorf("Calendars[1].Name = %q, want empty", cfg.Calendars[1].Name)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synctasks.yml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.DB != "synctasks.db" {
		t.Errorf("Cache.DB = %q, want the default", cfg.Cache.DB)
	}
	if cfg.Server.Platform != "caldav" {
		t.Errorf("Server.Platform = %q, want the default", cfg.Server.Platform)
	}
}
