// Package config loads the run configuration: where the stores live, which
// stores play which role, and which report variant to produce.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DriveRootEnv overrides Drive.Root when set.
const DriveRootEnv = "GASCON_DRIVE_ROOT"

// Config is constructed once at startup and passed to every component.
type Config struct {
	Drive   DriveConfig   `yaml:"drive"`
	Stores  StoreIDs      `yaml:"stores"`
	Variant Variant       `yaml:"variant"`
	Logging LoggingConfig `yaml:"logging"`
}

// DriveConfig locates the file store.
type DriveConfig struct {
	Root    string `yaml:"root"`
	BaseURL string `yaml:"base_url"`
}

// StoreIDs names the stores and folders by their file-store id.
type StoreIDs struct {
	Main           string `yaml:"main"`
	Individual     string `yaml:"individual"`
	Group          string `yaml:"group"`
	ReportTemplate string `yaml:"report_template"`
	SharedTemplate string `yaml:"shared_template"`
	TargetFolder   string `yaml:"target_folder"`
}

// SubjectRule highlights cells whose text equals Text.
type SubjectRule struct {
	Text       string `yaml:"text"`
	Background string `yaml:"background"`
}

// Variant selects between the report flavours that exist upstream.
type Variant struct {
	MessageLookup bool `yaml:"message_lookup"`
	Rollover      bool `yaml:"rollover"`

	// PeriodFormulaRange is the one-row range scanned for placeholder dates;
	// only the 0-based offsets in PeriodFormulaColumns are rewritten.
	PeriodFormulaRange   string `yaml:"period_formula_range"`
	PeriodFormulaColumns []int  `yaml:"period_formula_columns"`
	PlaceholderDate      string `yaml:"placeholder_date"`

	AggregationEndColumn string `yaml:"aggregation_end_column"`

	GeneralFormatColumn string        `yaml:"general_format_column"`
	TimeFormatColumn    string        `yaml:"time_format_column"`
	TimeFormat          string        `yaml:"time_format"`
	DateColumn          string        `yaml:"date_column"`
	SubjectColumn       string        `yaml:"subject_column"`
	SubjectRules        []SubjectRule `yaml:"subject_rules"`
	// RuleGridRows is the row count highlight rules cover. Tables taller than
	// this extend the rules in whole multiples of it.
	RuleGridRows int `yaml:"rule_grid_rows"`

	LookupKeyColumn string `yaml:"lookup_key_column"`
	FlagColumn      string `yaml:"flag_column"`
}

// LoggingConfig tunes the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the student-data variant: rollover, message lookup, time
// formatting and subject highlighting all enabled.
func Default() *Config {
	return &Config{
		Drive: DriveConfig{
			Root:    "drive",
			BaseURL: "file://",
		},
		Variant: Variant{
			MessageLookup:        true,
			Rollover:             true,
			PeriodFormulaRange:   "A1:I1",
			PeriodFormulaColumns: []int{0, 8},
			PlaceholderDate:      "2025-03-01",
			AggregationEndColumn: "P",
			GeneralFormatColumn:  "B",
			TimeFormatColumn:     "K",
			TimeFormat:           "HH:mm",
			DateColumn:           "J",
			SubjectColumn:        "M",
			SubjectRules: []SubjectRule{
				{Text: "英語", Background: "#F4CCCC"},
				{Text: "数学", Background: "#CFE2F3"},
				{Text: "理科", Background: "#FFF2CC"},
			},
			RuleGridRows:    1000,
			LookupKeyColumn: "O",
			FlagColumn:      "N",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Basic returns the simpler variant: yesterday's period only, no lookup, a
// wider period formula row and only the date rules.
func Basic() *Config {
	cfg := Default()
	v := &cfg.Variant
	v.MessageLookup = false
	v.Rollover = false
	v.PeriodFormulaRange = "A1:O1"
	v.PeriodFormulaColumns = []int{0, 1, 2, 3, 4, 5, 6, 8, 9, 10, 11, 12, 13, 14}
	v.AggregationEndColumn = "Z"
	v.TimeFormatColumn = ""
	v.SubjectColumn = ""
	v.SubjectRules = []SubjectRule{}
	return cfg
}

// Load overlays the YAML file at path on the defaults and applies the
// environment override. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if root := strings.TrimSpace(os.Getenv(DriveRootEnv)); root != "" {
		cfg.Drive.Root = root
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate checks the fields a run depends on.
func (c *Config) Validate() error {
	if c.Drive.Root == "" {
		return errors.New("config: drive.root is required")
	}
	if _, err := c.Variant.Placeholder(); err != nil {
		return err
	}
	if c.Variant.AggregationEndColumn == "" {
		return errors.New("config: variant.aggregation_end_column is required")
	}
	return nil
}

// Placeholder parses PlaceholderDate.
func (v Variant) Placeholder() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, v.PlaceholderDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: variant.placeholder_date %q: %w", v.PlaceholderDate, err)
	}
	return t, nil
}
