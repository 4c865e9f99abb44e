package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	// Embedded zone database; Asia/Shanghai must resolve on minimal images.
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone      = "Asia/Shanghai"
	defaultRetentionDays = 90
	defaultItemsPerPage  = 30
	defaultRenderedItems = 10

	configPathEnv      = "POLICY_CRAWLER_CONFIG"
	archivePathEnv     = "POLICY_ARCHIVE_PATH"
	snapshotPathEnv    = "POLICY_SNAPSHOT_PATH"
	metricsTextfileEnv = "POLICY_METRICS_TEXTFILE"
	logLevelEnv        = "LOG_LEVEL"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

// Extractor names understood by the scanner registry.
const (
	ExtractorHTML = "html"
	ExtractorRSS  = "rss"
)

// Configuration validation errors.
var (
	ErrNoDepartments       = errors.New("at least one department is required")
	ErrDepartmentName      = errors.New("department name is required")
	ErrDuplicateDepartment = errors.New("department name must be unique")
	ErrInvalidBaseURL      = errors.New("department base_url must be an absolute URL")
	ErrNoPolicyURLs        = errors.New("department needs at least one policy URL")
	ErrInvalidPolicyURL    = errors.New("policy URL must be absolute")
	ErrNoKeywords          = errors.New("department needs at least one non-empty keyword")
	ErrUnknownExtractor    = errors.New("extractor must be 'html' or 'rss'")
	ErrMissingArchivePath  = errors.New("archive.path is required")
	ErrMissingSnapshotPath = errors.New("archive.snapshot_path is required")
	ErrSamePaths           = errors.New("archive.path and archive.snapshot_path must differ")
	ErrInvalidRetention    = errors.New("archive.retention_days must be at least 1")
	ErrInvalidTimezone     = errors.New("archive.timezone is not a known location")
	ErrInvalidItemLimit    = errors.New("limits must be at least 1")
	ErrInvalidTimeout      = errors.New("fetch.timeout must be positive")
	ErrInvalidRenderSettle = errors.New("fetch.render_settle must not be negative")
	ErrInvalidInterval     = errors.New("scheduler.interval must be positive when enabled")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("logging.format must be 'text' or 'json'")
	ErrIncompleteTelegram  = errors.New("notifications.telegram needs both bot_token and chat_id")
	ErrEmptyNationalDept   = errors.New("national_departments entries must not be empty")
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging             LoggingConfig      `yaml:"logging"`
	Fetch               FetchConfig        `yaml:"fetch"`
	Limits              LimitsConfig       `yaml:"limits"`
	Archive             ArchiveConfig      `yaml:"archive"`
	NationalDepartments []string           `yaml:"national_departments"`
	Departments         []DepartmentConfig `yaml:"departments"`
	Metrics             MetricsConfig      `yaml:"metrics"`
	Scheduler           SchedulerConfig    `yaml:"scheduler"`
	Notifications       NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FetchConfig tunes the page fetchers.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	RenderSettle time.Duration `yaml:"render_settle"`
}

// LimitsConfig caps how many listing items are inspected per page.
type LimitsConfig struct {
	ItemsPerPage         int `yaml:"items_per_page"`
	RenderedItemsPerPage int `yaml:"rendered_items_per_page"`
}

// ArchiveConfig locates the output files and sets the retention window.
type ArchiveConfig struct {
	Path          string         `yaml:"path"`
	SnapshotPath  string         `yaml:"snapshot_path"`
	RetentionDays int            `yaml:"retention_days"`
	Timezone      string         `yaml:"timezone"`
	location      *time.Location `yaml:"-"`
}

// Location resolves the archive timezone used for "today" and the cutoff.
func (a ArchiveConfig) Location() *time.Location {
	if a.location != nil {
		return a.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DepartmentConfig describes one issuing body and its listing pages.
type DepartmentConfig struct {
	Name       string   `yaml:"name"`
	BaseURL    string   `yaml:"base_url"`
	PolicyURLs []string `yaml:"policy_urls"`
	Keywords   []string `yaml:"keywords"`
	Extractor  string   `yaml:"extractor"`
	Render     bool     `yaml:"render"`
}

// ExtractorName returns the configured extractor, defaulting to html.
func (d DepartmentConfig) ExtractorName() string {
	if d.Extractor == "" {
		return ExtractorHTML
	}
	return d.Extractor
}

// MetricsConfig points at a node_exporter textfile collector target.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// SchedulerConfig enables daemon mode.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads YAML configuration over the defaults, applies environment
// overrides and validates the result. An empty path falls back to
// POLICY_CRAWLER_CONFIG; with neither set the defaults are used.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(archivePathEnv); v != "" {
		c.Archive.Path = v
	}
	if v := os.Getenv(snapshotPathEnv); v != "" {
		c.Archive.SnapshotPath = v
	}
	if v := os.Getenv(metricsTextfileEnv); v != "" {
		c.Metrics.TextfilePath = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

// Validate checks the configuration and binds the archive timezone.
func (c *Config) Validate() error {
	if len(c.Departments) == 0 {
		return ErrNoDepartments
	}

	seen := make(map[string]struct{}, len(c.Departments))
	for i, dept := range c.Departments {
		if strings.TrimSpace(dept.Name) == "" {
			return fmt.Errorf("%w: departments[%d]", ErrDepartmentName, i)
		}
		if _, dup := seen[dept.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateDepartment, dept.Name)
		}
		seen[dept.Name] = struct{}{}

		if !isAbsoluteURL(dept.BaseURL) {
			return fmt.Errorf("%w: %s", ErrInvalidBaseURL, dept.Name)
		}
		if len(dept.PolicyURLs) == 0 {
			return fmt.Errorf("%w: %s", ErrNoPolicyURLs, dept.Name)
		}
		for _, u := range dept.PolicyURLs {
			if !isAbsoluteURL(u) {
				return fmt.Errorf("%w: %s: %q", ErrInvalidPolicyURL, dept.Name, u)
			}
		}
		if !hasKeyword(dept.Keywords) {
			return fmt.Errorf("%w: %s", ErrNoKeywords, dept.Name)
		}
		switch dept.ExtractorName() {
		case ExtractorHTML, ExtractorRSS:
		default:
			return fmt.Errorf("%w: %s: %q", ErrUnknownExtractor, dept.Name, dept.Extractor)
		}
	}

	for _, name := range c.NationalDepartments {
		if strings.TrimSpace(name) == "" {
			return ErrEmptyNationalDept
		}
	}

	if c.Archive.Path == "" {
		return ErrMissingArchivePath
	}
	if c.Archive.SnapshotPath == "" {
		return ErrMissingSnapshotPath
	}
	if c.Archive.Path == c.Archive.SnapshotPath {
		return ErrSamePaths
	}
	if c.Archive.RetentionDays < 1 {
		return ErrInvalidRetention
	}

	tz := c.Archive.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, tz)
	}
	c.Archive.location = loc

	if c.Limits.ItemsPerPage < 1 || c.Limits.RenderedItemsPerPage < 1 {
		return ErrInvalidItemLimit
	}
	if c.Fetch.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Fetch.RenderSettle < 0 {
		return ErrInvalidRenderSettle
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return ErrInvalidInterval
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	tg := c.Notifications.Telegram
	if (tg.BotToken == "") != (tg.ChatID == "") {
		return ErrIncompleteTelegram
	}

	return nil
}

// IsNational reports whether the department is listed as a national body.
func (c Config) IsNational(department string) bool {
	for _, name := range c.NationalDepartments {
		if name == department {
			return true
		}
	}
	return false
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}

func hasKeyword(keywords []string) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Fetch: FetchConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0 Safari/537.36",
			RenderSettle: 3 * time.Second,
		},
		Limits: LimitsConfig{
			ItemsPerPage:         defaultItemsPerPage,
			RenderedItemsPerPage: defaultRenderedItems,
		},
		Archive: ArchiveConfig{
			Path:          "public/historical_policies.json",
			SnapshotPath:  "public/policy_data.json",
			RetentionDays: defaultRetentionDays,
			Timezone:      defaultTimezone,
		},
		NationalDepartments: []string{"工信部", "科技部", "财政部"},
		Departments: []DepartmentConfig{
			{
				Name:       "工信部",
				BaseURL:    "https://www.miit.gov.cn/",
				PolicyURLs: []string{"https://www.miit.gov.cn/ztzl/zhuanjingtexin/"},
				Keywords:   []string{"专精特新", "小巨人企业", "专项培育"},
			},
			{
				Name:       "科技部",
				BaseURL:    "http://www.most.gov.cn/",
				PolicyURLs: []string{"http://www.most.gov.cn/ztzl/gxqyrd/"},
				Keywords:   []string{"高新技术企业", "研发费用", "科技型中小企业"},
			},
			{
				Name:       "福建省政府",
				BaseURL:    "https://www.fujian.gov.cn/",
				PolicyURLs: []string{"https://www.fujian.gov.cn/zwgk/ztzl/hqzc/"},
				Keywords:   []string{"惠企", "专项资金", "扶持"},
			},
		},
		Scheduler: SchedulerConfig{Enabled: false, Interval: 24 * time.Hour},
	}
}
