package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/n0roo/content-locator/internal/report"
)

// ProjectConfig represents .locator/config.yaml
type ProjectConfig struct {
	Version  string         `yaml:"version"`
	Site     SiteInfo       `yaml:"site"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Classify ClassifyConfig `yaml:"classify"`
	Fields   FieldsConfig   `yaml:"fields"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`

	// 빌드 제한 시간 (예: "30s", 비어 있으면 무제한)
	Timeout string `yaml:"timeout,omitempty"`
}

// SiteInfo holds site metadata used for view/edit links
type SiteInfo struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url,omitempty"`
}

// CorpusConfig selects the documents scanned for fragments
type CorpusConfig struct {
	Types            []string `yaml:"types"`
	ExcludedStatuses []string `yaml:"excluded_statuses"`
}

// ClassifyConfig holds block classification settings
type ClassifyConfig struct {
	FieldBlockPrefix string `yaml:"field_block_prefix"`
	PlaceholderTitle string `yaml:"placeholder_title"`
}

// FieldsConfig holds custom field scan settings
type FieldsConfig struct {
	Kinds          []string `yaml:"kinds"`
	ExcludedStatus string   `yaml:"excluded_status"`
}

// DatabaseConfig holds the store location
type DatabaseConfig struct {
	Path string `yaml:"path"`
	Type string `yaml:"type,omitempty"` // sqlite | duckdb
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DefaultConfig returns a default config
func DefaultConfig(siteName string) *ProjectConfig {
	opts := report.DefaultOptions()
	return &ProjectConfig{
		Version: "1.0.0",
		Site: SiteInfo{
			Name: siteName,
		},
		Corpus: CorpusConfig{
			Types:            opts.Types,
			ExcludedStatuses: opts.ExcludedStatuses,
		},
		Classify: ClassifyConfig{
			FieldBlockPrefix: opts.FieldBlockPrefix,
			PlaceholderTitle: opts.PlaceholderTitle,
		},
		Fields: FieldsConfig{
			Kinds:          opts.FieldKinds,
			ExcludedStatus: opts.FieldExcludedStatus,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(ProjectDirName, DBFileName),
		},
		Server: ServerConfig{
			Port: 9000,
		},
	}
}

// ConfigPath returns the config file path for a project
func ConfigPath(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "config.yaml")
}

// Load loads config from .locator/config.yaml
func Load(projectRoot string) (*ProjectConfig, error) {
	return LoadFile(ConfigPath(projectRoot))
}

// LoadFile loads config from an explicit path. Missing keys keep their
// defaults.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("설정 파일이 없습니다. 'locator init'을 먼저 실행하세요: %w", err)
		}
		return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
	}

	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
	}

	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to .locator/config.yaml
func Save(projectRoot string, cfg *ProjectConfig) error {
	configPath := ConfigPath(projectRoot)

	// 디렉토리 생성
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("설정 직렬화 실패: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("설정 파일 저장 실패: %w", err)
	}

	return nil
}

// Exists checks if project config exists
func Exists(projectRoot string) bool {
	_, err := os.Stat(ConfigPath(projectRoot))
	return err == nil
}

// TimeoutDuration parses the timeout setting
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("잘못된 timeout 값 %q: %w", c.Timeout, err)
	}
	return d, nil
}

// DBPath resolves the database path against the project root
func (c *ProjectConfig) DBPath(projectRoot string) string {
	if c.Database.Path == "" || filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(projectRoot, c.Database.Path)
}

// ReportOptions converts the config into build options. Empty settings fall
// back to the defaults.
func (c *ProjectConfig) ReportOptions() (report.Options, error) {
	opts := report.DefaultOptions()

	timeout, err := c.TimeoutDuration()
	if err != nil {
		return opts, err
	}
	opts.Timeout = timeout

	if len(c.Corpus.Types) > 0 {
		opts.Types = c.Corpus.Types
	}
	if c.Corpus.ExcludedStatuses != nil {
		opts.ExcludedStatuses = c.Corpus.ExcludedStatuses
	}
	if c.Classify.FieldBlockPrefix != "" {
		opts.FieldBlockPrefix = c.Classify.FieldBlockPrefix
	}
	if c.Classify.PlaceholderTitle != "" {
		opts.PlaceholderTitle = c.Classify.PlaceholderTitle
	}
	if len(c.Fields.Kinds) > 0 {
		opts.FieldKinds = c.Fields.Kinds
	}
	if c.Fields.ExcludedStatus != "" {
		opts.FieldExcludedStatus = c.Fields.ExcludedStatus
	}
	return opts, nil
}
