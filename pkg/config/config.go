package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/spf13/viper"
)

const (
	xdgAppName = "smartflow"
	configFile = "config.json"
	envPrefix  = "SMARTFLOW"

	SourceNone  = "none"
	SourceIMAP  = model.SourceIMAP
	SourceGmail = model.SourceGmail
)

type IMAPConfig struct {
	Host     string `json:"host" mapstructure:"host" validate:"required,hostname_rfc1123|ip"`
	Port     int    `json:"port" mapstructure:"port" validate:"min=1,max=65535"`
	Username string `json:"username" mapstructure:"username" validate:"required"`
	// Password is only ever read from SMARTFLOW_IMAP_PASSWORD (or .env).
	Password    string `json:"-" mapstructure:"password" validate:"required"`
	Mailbox     string `json:"mailbox" mapstructure:"mailbox" validate:"required"`
	MaxMessages int    `json:"max_messages" mapstructure:"max_messages" validate:"min=0"`
}

type GmailConfig struct {
	User       string `json:"user" mapstructure:"user" validate:"required"`
	MaxResults int64  `json:"max_results" mapstructure:"max_results" validate:"min=1,max=500"`
}

type Config struct {
	Source              string          `json:"source" mapstructure:"source" validate:"oneof=none imap gmail"`
	SubjectFilter       string          `json:"subject_filter" mapstructure:"subject_filter"`
	DefaultContext      model.Context   `json:"default_context" mapstructure:"default_context" validate:"required,gtdcontext"`
	DefaultPriority     int             `json:"default_priority" mapstructure:"default_priority" validate:"min=1,max=4"`
	Contexts            []model.Context `json:"contexts" mapstructure:"contexts" validate:"min=1,dive,gtdcontext"`
	Projects            []string        `json:"projects" mapstructure:"projects" validate:"dive,required"`
	PreviewLength       int             `json:"preview_length" mapstructure:"preview_length" validate:"min=0"`
	FetchTimeoutSeconds int             `json:"fetch_timeout_seconds" mapstructure:"fetch_timeout_seconds" validate:"min=1"`
	Links               []model.Link    `json:"links" mapstructure:"links" validate:"dive"`

	IMAP  IMAPConfig  `json:"imap" mapstructure:"imap" validate:"-"`
	Gmail GmailConfig `json:"gmail" mapstructure:"gmail" validate:"-"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Source:          SourceNone,
		SubjectFilter:   "[DEMANDA]",
		DefaultContext:  model.AtComputer,
		DefaultPriority: 3,
		Contexts:        append([]model.Context(nil), model.Contexts...),
		Projects: []string{
			"Monthly accounting report",
			"Home office proposal (KPIs)",
			"Fixed-asset invoice audit",
		},
		PreviewLength:       200,
		FetchTimeoutSeconds: 30,
		Links: []model.Link{
			{Name: "Tax clearance certificates folder"},
			{Name: "Cash flow spreadsheet"},
			{Name: "Fixed-asset invoices"},
		},
		IMAP: IMAPConfig{
			Port:    993,
			Mailbox: "INBOX",
		},
		Gmail: GmailConfig{
			User:       "me",
			MaxResults: 50,
		},
	}
}

// FetchTimeout is how long one mail fetch may take.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// HasProject reports whether p is in the project catalog.
func (c *Config) HasProject(p string) bool {
	for _, known := range c.Projects {
		if known == p {
			return true
		}
	}
	return false
}

// HasContext reports whether ctx is one of the configured contexts.
func (c *Config) HasContext(ctx model.Context) bool {
	for _, known := range c.Contexts {
		if known == ctx {
			return true
		}
	}
	return false
}

// Validate checks the config and the section of the selected source.
func (c *Config) Validate() error {
	if err := model.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.HasContext(c.DefaultContext) {
		return fmt.Errorf("invalid config: default context %s is not in contexts", c.DefaultContext)
	}
	switch c.Source {
	case SourceIMAP:
		if err := model.ValidateStruct(c.IMAP); err != nil {
			return fmt.Errorf("invalid imap config: %w", err)
		}
	case SourceGmail:
		if err := model.ValidateStruct(c.Gmail); err != nil {
			return fmt.Errorf("invalid gmail config: %w", err)
		}
	}
	return nil
}

func GetConfigPath() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName, configFile), nil
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults. SMARTFLOW_* environment
// variables override file values, e.g. SMARTFLOW_IMAP_HOST.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("imap.password"); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	contexts := make([]string, len(d.Contexts))
	for i, c := range d.Contexts {
		contexts[i] = string(c)
	}
	links := make([]map[string]interface{}, len(d.Links))
	for i, l := range d.Links {
		links[i] = map[string]interface{}{"name": l.Name, "url": l.URL}
	}

	v.SetDefault("source", d.Source)
	v.SetDefault("subject_filter", d.SubjectFilter)
	v.SetDefault("default_context", string(d.DefaultContext))
	v.SetDefault("default_priority", d.DefaultPriority)
	v.SetDefault("contexts", contexts)
	v.SetDefault("projects", d.Projects)
	v.SetDefault("preview_length", d.PreviewLength)
	v.SetDefault("fetch_timeout_seconds", d.FetchTimeoutSeconds)
	v.SetDefault("links", links)
	v.SetDefault("imap.host", d.IMAP.Host)
	v.SetDefault("imap.port", d.IMAP.Port)
	v.SetDefault("imap.username", d.IMAP.Username)
	v.SetDefault("imap.mailbox", d.IMAP.Mailbox)
	v.SetDefault("imap.max_messages", d.IMAP.MaxMessages)
	v.SetDefault("gmail.user", d.Gmail.User)
	v.SetDefault("gmail.max_results", d.Gmail.MaxResults)
}

// Save writes cfg to path, or the default location when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
