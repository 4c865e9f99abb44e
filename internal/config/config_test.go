package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "policycrawler.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

const validConfigYAML = `
logging:
  level: debug
  format: json
fetch:
  timeout: 5s
  user_agent: "PolicyCrawler/test"
  render_settle: 1500ms
limits:
  items_per_page: 20
  rendered_items_per_page: 5
archive:
  path: out/historical.json
  snapshot_path: out/today.json
  retention_days: 30
  timezone: UTC
national_departments: [财政部]
departments:
  - name: 财政部
    base_url: https://www.mof.gov.cn/
    policy_urls:
      - https://www.mof.gov.cn/zhengwuxinxi/zhengcefabu/
    keywords: [研发费用]
  - name: 广东省政府
    base_url: https://www.gd.gov.cn/
    policy_urls:
      - https://www.gd.gov.cn/rss/zwgk.xml
    keywords: [惠企]
    extractor: rss
    render: true
scheduler:
  enabled: true
  interval: 12h
`

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Departments) != 3 {
		t.Fatalf("expected 3 default departments, got %d", len(cfg.Departments))
	}
	if cfg.Archive.RetentionDays != 90 {
		t.Errorf("expected retention 90, got %d", cfg.Archive.RetentionDays)
	}
	if cfg.Limits.ItemsPerPage != 30 || cfg.Limits.RenderedItemsPerPage != 10 {
		t.Errorf("unexpected limits %+v", cfg.Limits)
	}
	if cfg.Archive.Location().String() != "Asia/Shanghai" {
		t.Errorf("unexpected location %s", cfg.Archive.Location())
	}
	if !cfg.IsNational("科技部") || cfg.IsNational("福建省政府") {
		t.Errorf("national department set not applied")
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Fetch.Timeout != 5*time.Second || cfg.Fetch.RenderSettle != 1500*time.Millisecond {
		t.Errorf("durations not decoded: %+v", cfg.Fetch)
	}
	if len(cfg.Departments) != 2 {
		t.Fatalf("file departments should replace defaults, got %d", len(cfg.Departments))
	}
	if cfg.Departments[0].ExtractorName() != ExtractorHTML {
		t.Errorf("expected html default, got %s", cfg.Departments[0].ExtractorName())
	}
	if cfg.Departments[1].ExtractorName() != ExtractorRSS || !cfg.Departments[1].Render {
		t.Errorf("unexpected second department %+v", cfg.Departments[1])
	}
	if cfg.IsNational("工信部") {
		t.Errorf("national set should come from file")
	}
	if cfg.Archive.Location() != time.UTC {
		t.Errorf("expected UTC, got %s", cfg.Archive.Location())
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.Interval != 12*time.Hour {
		t.Errorf("unexpected scheduler %+v", cfg.Scheduler)
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv(configPathEnv, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Archive.Path != "out/historical.json" {
		t.Errorf("config path env not honored: %s", cfg.Archive.Path)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(archivePathEnv, "/data/archive.json")
	t.Setenv(snapshotPathEnv, "/data/today.json")
	t.Setenv(logLevelEnv, "warn")
	t.Setenv(telegramTokenEnv, "token")
	t.Setenv(telegramChatIDEnv, "chat")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Archive.Path != "/data/archive.json" || cfg.Archive.SnapshotPath != "/data/today.json" {
		t.Errorf("path overrides not applied: %+v", cfg.Archive)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level override not applied: %s", cfg.Logging.Level)
	}
	if !cfg.Notifications.Telegram.Enabled() {
		t.Errorf("telegram credentials not applied")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := Load(createTempConfigFile(t, "departments: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no departments", func(c *Config) { c.Departments = nil }, ErrNoDepartments},
		{"blank name", func(c *Config) { c.Departments[0].Name = " " }, ErrDepartmentName},
		{"duplicate", func(c *Config) { c.Departments[1].Name = c.Departments[0].Name }, ErrDuplicateDepartment},
		{"relative base", func(c *Config) { c.Departments[0].BaseURL = "/gov" }, ErrInvalidBaseURL},
		{"no urls", func(c *Config) { c.Departments[0].PolicyURLs = nil }, ErrNoPolicyURLs},
		{"relative url", func(c *Config) { c.Departments[0].PolicyURLs = []string{"ztzl/"} }, ErrInvalidPolicyURL},
		{"blank keywords", func(c *Config) { c.Departments[0].Keywords = []string{"", " "} }, ErrNoKeywords},
		{"extractor", func(c *Config) { c.Departments[0].Extractor = "pdf" }, ErrUnknownExtractor},
		{"national blank", func(c *Config) { c.NationalDepartments = []string{""} }, ErrEmptyNationalDept},
		{"archive path", func(c *Config) { c.Archive.Path = "" }, ErrMissingArchivePath},
		{"snapshot path", func(c *Config) { c.Archive.SnapshotPath = "" }, ErrMissingSnapshotPath},
		{"same paths", func(c *Config) { c.Archive.SnapshotPath = c.Archive.Path }, ErrSamePaths},
		{"retention", func(c *Config) { c.Archive.RetentionDays = 0 }, ErrInvalidRetention},
		{"timezone", func(c *Config) { c.Archive.Timezone = "Mars/Olympus" }, ErrInvalidTimezone},
		{"items", func(c *Config) { c.Limits.ItemsPerPage = 0 }, ErrInvalidItemLimit},
		{"timeout", func(c *Config) { c.Fetch.Timeout = 0 }, ErrInvalidTimeout},
		{"settle", func(c *Config) { c.Fetch.RenderSettle = -time.Second }, ErrInvalidRenderSettle},
		{"interval", func(c *Config) { c.Scheduler = SchedulerConfig{Enabled: true} }, ErrInvalidInterval},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
		{"telegram", func(c *Config) { c.Notifications.Telegram.BotToken = "only-token" }, ErrIncompleteTelegram},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
