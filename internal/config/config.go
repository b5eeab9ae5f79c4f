package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

//go:embed site.default.yaml
var defaultSiteYAML []byte

// AppConfig holds infrastructure settings (env vars, optional config file, flags).
type AppConfig struct {
	SiteConfigPath string       `mapstructure:"site_config"`
	DBPath         string       `mapstructure:"db_path"`
	OutputDir      string       `mapstructure:"output_dir"`
	GeminiAPIKey   string       `mapstructure:"gemini_api_key"`
	Fetch          FetchConfig  `mapstructure:"fetch"`
	OCR            OCRConfig    `mapstructure:"ocr"`
	Server         ServerConfig `mapstructure:"server"`
	Log            LogConfig    `mapstructure:"log"`
}

// FetchConfig selects how pages are downloaded.
type FetchConfig struct {
	Mode        string `mapstructure:"mode"` // http | browser
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	UserAgent   string `mapstructure:"user_agent"`
}

// OCRConfig selects the text recognition engine.
type OCRConfig struct {
	Engine      string `mapstructure:"engine"` // tesseract | gemini
	Language    string `mapstructure:"language"`
	GeminiModel string `mapstructure:"gemini_model"`
}

// ServerConfig configures the web UI.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SiteConfig describes the campus directory site (from YAML).
type SiteConfig struct {
	BaseURL       string    `yaml:"base_url"`
	DirectoryPath string    `yaml:"directory_path"`
	Selectors     Selectors `yaml:"selectors"`
}

// Selectors are the CSS selectors used to read the directory and detail pages.
type Selectors struct {
	TableBody      string `yaml:"table_body"`
	Row            string `yaml:"row"`
	HeaderCell     string `yaml:"header_cell"`
	DataCell       string `yaml:"data_cell"`
	Link           string `yaml:"link"`
	AddressHeading string `yaml:"address_heading"`
	MapFrame       string `yaml:"map_frame"`
}

// DirectoryURL is the absolute URL of the listing page.
func (s *SiteConfig) DirectoryURL() string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(s.DirectoryPath, "/")
}

// Load reads infrastructure settings from defaults, an optional
// campus-locator.yaml in the working directory, and CAMPUSLOC_* env vars.
// Flags bound to v before calling Load take precedence.
func Load(v *viper.Viper) (*AppConfig, error) {
	v.SetConfigName("campus-locator")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CAMPUSLOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("site_config", "")
	v.SetDefault("db_path", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("fetch.mode", "http")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; campus-locator/1.0)")
	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.gemini_model", "gemini-2.5-flash")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Fall back to the variable the Gemini SDK examples use.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	switch cfg.Fetch.Mode {
	case "http", "browser":
	default:
		return nil, eris.Errorf("config: unknown fetch.mode %q", cfg.Fetch.Mode)
	}
	switch cfg.OCR.Engine {
	case "tesseract", "gemini":
	default:
		return nil, eris.Errorf("config: unknown ocr.engine %q", cfg.OCR.Engine)
	}

	return &cfg, nil
}

// LoadSiteConfig reads the YAML site description. An empty path returns the
// embedded default for the UT Austin directory.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	data := defaultSiteYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "config: read site config at '%s'", path)
		}
	}
	return ParseSiteConfig(data)
}

// ParseSiteConfig decodes a site description and fills empty selectors with defaults.
func ParseSiteConfig(data []byte) (*SiteConfig, error) {
	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrap(err, "config: parse site YAML")
	}
	if cfg.BaseURL == "" {
		return nil, eris.New("config: site base_url is required")
	}
	if cfg.DirectoryPath == "" {
		return nil, eris.New("config: site directory_path is required")
	}
	cfg.Selectors.applyDefaults()
	return &cfg, nil
}

func (s *Selectors) applyDefaults() {
	setIfEmpty(&s.TableBody, "tbody")
	setIfEmpty(&s.Row, "tr")
	setIfEmpty(&s.HeaderCell, "th")
	setIfEmpty(&s.DataCell, "td")
	setIfEmpty(&s.Link, "a")
	setIfEmpty(&s.AddressHeading, "h3")
	setIfEmpty(&s.MapFrame, "iframe")
}

func setIfEmpty(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	// Results go to stdout; keep diagnostics on stderr.
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
