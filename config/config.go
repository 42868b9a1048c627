package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"mailreport/apperr"
	"mailreport/mailer"
	"mailreport/render"
)

// OutputMode selects how the query result travels in the email.
type OutputMode int

const (
	// Inline appends an HTML table to the message body.
	Inline OutputMode = iota
	// Attachment attaches an xlsx workbook.
	Attachment
)

func (m OutputMode) String() string {
	if m == Attachment {
		return "attachment"
	}
	return "inline"
}

// Config holds everything a run needs. It is built once by Load and not
// modified afterwards.
type Config struct {
	Driver             string
	ConnectionStr      string
	OutputMode         OutputMode
	AttachmentLocation string
	QueryTimeout       time.Duration
	Email              EmailConfig
	Excel              render.Options
	SMTP               mailer.SMTPConfig
	// Warnings collects non-fatal problems found while loading.
	Warnings []string
}

// EmailConfig holds the static parts of the report email.
type EmailConfig struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	MessageBody string
	TextBody    string
}

// EnvPrefix is the prefix of environment variables overriding file keys,
// e.g. MAILREPORT_SMTP_PASSWORD for Smtp.Password.
const EnvPrefix = "MAILREPORT"

const (
	DefaultDriver       = "sqlserver"
	DefaultQueryTimeout = 5 * time.Minute
	DefaultSMTPPort     = 587
	DefaultSMTPTimeout  = time.Minute
)

// Load reads the configuration file at path (JSON unless the extension
// says YAML or TOML), applies environment overrides and builds the typed
// records. A missing file or a missing required key is a
// ConfigurationError.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperr.NewConfiguration("load configuration", errors.New("configuration file path is empty"))
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NewConfiguration("load configuration", fmt.Errorf("configuration file %s not found: %w", path, err))
		}
		return nil, apperr.NewConfiguration("load configuration", err)
	}
	if info.IsDir() {
		return nil, apperr.NewConfiguration("load configuration", fmt.Errorf("%s is a directory", path))
	}

	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "json", "yaml", "yml", "toml":
	default:
		// appConfig.js and other extensions are read as JSON
		v.SetConfigType("json")
	}
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, apperr.NewConfiguration("parse configuration", err)
	}
	return build(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Driver", DefaultDriver)
	v.SetDefault("SendAsAttachment", "false")
	v.SetDefault("QueryTimeout", DefaultQueryTimeout.String())

	d := render.DefaultOptions()
	v.SetDefault("ExcelOptions.SheetName", d.SheetName)
	v.SetDefault("ExcelOptions.HeaderStyle.Bold", d.HeaderStyle.Bold)
	v.SetDefault("ExcelOptions.HeaderStyle.BackgroundColor", d.HeaderStyle.BackgroundColor)
	v.SetDefault("ExcelOptions.DefaultColumnWidth", d.DefaultColumnWidth)
	v.SetDefault("ExcelOptions.FreezeHeader", d.FreezeHeader)
	v.SetDefault("ExcelOptions.AutoFilter", d.AutoFilter)
	v.SetDefault("ExcelOptions.FilePrefix", d.FilePrefix)

	v.SetDefault("Smtp.Port", DefaultSMTPPort)
	v.SetDefault("Smtp.SSL", false)
	v.SetDefault("Smtp.InsecureSkipVerify", false)
	v.SetDefault("Smtp.Timeout", DefaultSMTPTimeout.String())
}

// parseFlag accepts only true or false in any letter case. Numeric and
// single-letter forms are rejected so a typo never switches the output
// mode silently.
func parseFlag(raw string) (value, ok bool) {
	switch {
	case strings.EqualFold(raw, "true"):
		return true, true
	case strings.EqualFold(raw, "false"):
		return false, true
	}
	return false, false
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Driver:             strings.TrimSpace(v.GetString("Driver")),
		ConnectionStr:      strings.TrimSpace(v.GetString("ConnectionStr")),
		AttachmentLocation: strings.TrimSpace(v.GetString("AttachmentLocation")),
	}
	if cfg.ConnectionStr == "" {
		return nil, missingKey("ConnectionStr")
	}

	raw := strings.TrimSpace(v.GetString("SendAsAttachment"))
	useXL, ok := parseFlag(raw)
	if !ok {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("SendAsAttachment %q is not a boolean, sending inline", raw))
	}
	if useXL {
		cfg.OutputMode = Attachment
		if cfg.AttachmentLocation == "" {
			return nil, missingKey("AttachmentLocation")
		}
	}

	var err error
	if cfg.QueryTimeout, err = duration(v, "QueryTimeout"); err != nil {
		return nil, err
	}

	cfg.Email = EmailConfig{
		From:        strings.TrimSpace(v.GetString("Email.From")),
		To:          addressList(v.Get("Email.To")),
		Cc:          addressList(v.Get("Email.Cc")),
		Bcc:         addressList(v.Get("Email.Bcc")),
		Subject:     v.GetString("Email.Subject"),
		MessageBody: v.GetString("Email.MessageBody"),
		TextBody:    v.GetString("Email.TextBody"),
	}
	if len(cfg.Email.To) == 0 {
		return nil, missingKey("Email.To")
	}

	if cfg.Excel, err = excelOptions(v); err != nil {
		return nil, err
	}

	cfg.SMTP = mailer.SMTPConfig{
		Host:               strings.TrimSpace(v.GetString("Smtp.Host")),
		Port:               v.GetInt("Smtp.Port"),
		Username:           v.GetString("Smtp.Username"),
		Password:           v.GetString("Smtp.Password"),
		SSL:                v.GetBool("Smtp.SSL"),
		InsecureSkipVerify: v.GetBool("Smtp.InsecureSkipVerify"),
	}
	if cfg.SMTP.Timeout, err = duration(v, "Smtp.Timeout"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that only matter for a real send.
func (c *Config) Validate(requireTransport bool) error {
	if requireTransport && c.SMTP.Host == "" {
		return missingKey("Smtp.Host")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return apperr.NewConfiguration("validate configuration", fmt.Errorf("Smtp.Port %d is out of range", c.SMTP.Port))
	}
	return nil
}

func excelOptions(v *viper.Viper) (render.Options, error) {
	opts := render.Options{
		SheetName: v.GetString("ExcelOptions.SheetName"),
		HeaderStyle: render.HeaderStyle{
			Bold:            v.GetBool("ExcelOptions.HeaderStyle.Bold"),
			BackgroundColor: v.GetString("ExcelOptions.HeaderStyle.BackgroundColor"),
		},
		DefaultColumnWidth: v.GetFloat64("ExcelOptions.DefaultColumnWidth"),
		FreezeHeader:       v.GetBool("ExcelOptions.FreezeHeader"),
		AutoFilter:         v.GetBool("ExcelOptions.AutoFilter"),
		FilePrefix:         v.GetString("ExcelOptions.FilePrefix"),
	}
	if opts.DefaultColumnWidth < 0 {
		return opts, apperr.NewConfiguration("parse configuration", fmt.Errorf("ExcelOptions.DefaultColumnWidth must not be negative"))
	}
	widths := v.GetStringMap("ExcelOptions.ColumnWidths")
	if len(widths) > 0 {
		opts.ColumnWidths = make(map[string]float64, len(widths))
		for key, raw := range widths {
			w, err := cast.ToFloat64E(raw)
			if err != nil || w <= 0 {
				return opts, apperr.NewConfiguration("parse configuration", fmt.Errorf("ExcelOptions.ColumnWidths.%s: invalid width %v", key, raw))
			}
			opts.ColumnWidths[key] = w
		}
	}
	return opts, nil
}

// addressList accepts either a list of addresses or a single string of
// addresses separated by commas or semicolons.
func addressList(raw any) []string {
	switch t := raw.(type) {
	case nil:
		return nil
	case string:
		return mailer.ParseAddresses(t)
	default:
		return mailer.ParseAddresses(cast.ToStringSlice(t)...)
	}
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// plain numbers are seconds
		secs, nerr := strconv.ParseFloat(raw, 64)
		if nerr != nil {
			return 0, apperr.NewConfiguration("parse configuration", fmt.Errorf("%s: %w", key, err))
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d < 0 {
		return 0, apperr.NewConfiguration("parse configuration", fmt.Errorf("%s must not be negative", key))
	}
	return d, nil
}

func missingKey(key string) error {
	return apperr.NewConfiguration("parse configuration", fmt.Errorf("missing required key %s", key))
}
