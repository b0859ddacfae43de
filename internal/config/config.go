package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ArthurCbn/photobot/internal/policy"
	"github.com/ArthurCbn/photobot/pkg/types"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DataDirName is the directory under the user's home holding groups,
// history, journal and logs.
const DataDirName = ".photobot"

type Config struct {
	Source            string               `yaml:"source" json:"source"`
	Dest              string               `yaml:"dest" json:"dest"`
	GroupsFile        string               `yaml:"groups_file" json:"groups_file"`
	Recursive         bool                 `yaml:"recursive" json:"recursive"`
	IncludeExtensions []string             `yaml:"include_extensions" json:"include_extensions"`
	ConflictPolicy    types.ConflictPolicy `yaml:"conflict_policy" json:"conflict_policy"`
	UnmatchedDir      string               `yaml:"unmatched_dir" json:"unmatched_dir"`
	UnknownYearDir    string               `yaml:"unknown_year_dir" json:"unknown_year_dir"`
	ExifToolPath      string               `yaml:"exiftool_path" json:"exiftool_path"`
	JournalFile       string               `yaml:"journal_file" json:"journal_file"`
	LogFile           string               `yaml:"log_file" json:"log_file"`
	LogJSON           bool                 `yaml:"log_json" json:"log_json"`
	DryRun            bool                 `yaml:"dry_run" json:"dry_run"`
	HashVerify        bool                 `yaml:"hash_verify" json:"hash_verify"`
	Listen            string               `yaml:"listen" json:"listen"`
}

// DataDir returns ~/.photobot.
func DataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, DataDirName)
}

func DefaultConfig() *Config {
	dataDir := DataDir()

	return &Config{
		GroupsFile:     filepath.Join(dataDir, "groups.json"),
		Recursive:      false,
		ConflictPolicy: types.ConflictPolicyFail,
		UnmatchedDir:   "z_unsorted",
		UnknownYearDir: "unknown-year",
		JournalFile:    filepath.Join(dataDir, "journal.json"),
		LogFile:        filepath.Join(dataDir, "photobot.log"),
		LogJSON:        false,
		DryRun:         false,
		HashVerify:     false,
		Listen:         ":8080",
	}
}

func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from PHOTOBOT_* environment variables,
// e.g. PHOTOBOT_GROUPS_FILE or PHOTOBOT_DRY_RUN. List values are comma separated.
func (c *Config) ApplyEnv() {
	v := viper.New()
	v.SetEnvPrefix("PHOTOBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	strs := map[string]*string{
		"source":           &c.Source,
		"dest":             &c.Dest,
		"groups_file":      &c.GroupsFile,
		"unmatched_dir":    &c.UnmatchedDir,
		"unknown_year_dir": &c.UnknownYearDir,
		"exiftool_path":    &c.ExifToolPath,
		"journal_file":     &c.JournalFile,
		"log_file":         &c.LogFile,
		"listen":           &c.Listen,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	bools := map[string]*bool{
		"recursive":   &c.Recursive,
		"log_json":    &c.LogJSON,
		"dry_run":     &c.DryRun,
		"hash_verify": &c.HashVerify,
	}
	for key, dst := range bools {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	if v.IsSet("conflict_policy") {
		c.ConflictPolicy = types.ConflictPolicy(v.GetString("conflict_policy"))
	}
	if v.IsSet("include_extensions") {
		var exts []string
		for _, ext := range strings.Split(v.GetString("include_extensions"), ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		c.IncludeExtensions = exts
	}
}

// Validate checks a sort configuration and fills defaults.
func (c *Config) Validate() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source path is required"}
	}
	if c.Dest == "" {
		return &ValidationError{Field: "dest", Message: "destination path is required"}
	}
	return c.normalize()
}

// ValidateServer checks a map server configuration and fills defaults.
func (c *Config) ValidateServer() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source path is required"}
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	return c.normalize()
}

func (c *Config) normalize() error {
	p, err := policy.ParseConflictPolicy(string(c.ConflictPolicy))
	if err != nil {
		return &ValidationError{Field: "conflict_policy", Message: err.Error()}
	}
	c.ConflictPolicy = p

	dataDir := DataDir()

	if c.GroupsFile == "" {
		c.GroupsFile = filepath.Join(dataDir, "groups.json")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dataDir, "photobot.log")
	}
	if c.JournalFile == "" {
		c.JournalFile = filepath.Join(dataDir, "journal.json")
	}
	if c.UnmatchedDir == "" {
		c.UnmatchedDir = "z_unsorted"
	}
	if c.UnknownYearDir == "" {
		c.UnknownYearDir = "unknown-year"
	}

	return nil
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
