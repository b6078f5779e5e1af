package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var (
	cfg     *APIConfig
	loadErr error
	once    sync.Once
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	DB             DBConfig             `xml:"DB"`
	Logging        LoggingConfig        `xml:"LOGGING"`
	Reports        ReportsConfig        `xml:"REPORTS"`
	THIRD_PARTY    ThirdPartyConfig     `xml:"THIRD_PARTY"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port     int    `xml:"PORT"`
	Host     string `xml:"HOST"`
	Path     string `xml:"PATH"`
	TimeZone string `xml:"TIME_ZONE"`
	Debug    bool   `xml:"DEBUG"`
}

// AuthenticationConfig holds authentication settings. Secrets come from the
// environment, never from the XML file.
type AuthenticationConfig struct {
	SessionTimeout int     `xml:"SESSION_TIMEOUT"` // minutes
	LoginRate      float64 `xml:"LOGIN_RATE"`      // attempts per second per client
	LoginBurst     int     `xml:"LOGIN_BURST"`
	JWTSecret      string  `xml:"-"`
	AdminSecret    string  `xml:"-"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	SSLMode    string       `xml:"SSL_MODE"`
	Name       string       `xml:"NAME"`
	Username   string       `xml:"USERNAME"`
	Password   DBPassword   `xml:"PASSWORD"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBPassword holds password details. TYPE="env" reads the value from
// DB_PASSWORD.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"` // seconds
}

// LoggingConfig controls the structured logger and its rotating file.
type LoggingConfig struct {
	Level      string `xml:"LEVEL"`
	File       string `xml:"FILE"`
	MaxSizeMB  int    `xml:"MAX_SIZE_MB"`
	MaxBackups int    `xml:"MAX_BACKUPS"`
	MaxAgeDays int    `xml:"MAX_AGE_DAYS"`
}

// ReportsConfig sets where generated PDF reports are written.
type ReportsConfig struct {
	WorkingDir string `xml:"WORKING_DIR"`
}

// ThirdPartyConfig holds the optional question assistant endpoint.
type ThirdPartyConfig struct {
	LLMURL     string `xml:"LLM_URL"`
	LLMModel   string `xml:"LLM_MODEL"`
	LLMTimeout int    `xml:"LLM_TIMEOUT"` // seconds
}

// DSN builds the Postgres connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password.Value, d.Name, d.SSLMode)
}

// Addr is the listen address of the HTTP server.
func (c ContextConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Parse decodes an XML configuration and fills defaults. It does not read
// the environment.
func Parse(data []byte) (*APIConfig, error) {
	var c APIConfig
	if err := xml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	c.setDefaults()
	return &c, nil
}

func (c *APIConfig) setDefaults() {
	if c.Context.Port == 0 {
		c.Context.Port = 8000
	}
	if c.Context.Path == "" {
		c.Context.Path = "/api"
	}
	if c.Authentication.SessionTimeout == 0 {
		c.Authentication.SessionTimeout = 480
	}
	if c.Authentication.LoginRate == 0 {
		c.Authentication.LoginRate = 1
	}
	if c.Authentication.LoginBurst == 0 {
		c.Authentication.LoginBurst = 5
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Reports.WorkingDir == "" {
		c.Reports.WorkingDir = "working/reports"
	}
	if c.THIRD_PARTY.LLMTimeout == 0 {
		c.THIRD_PARTY.LLMTimeout = 60
	}
}

// ApplyEnv copies secrets and endpoint overrides from lookup.
func (c *APIConfig) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("JWT_SECRET"); ok {
		c.Authentication.JWTSecret = v
	}
	if v, ok := lookup("ADMIN_SECRET"); ok {
		c.Authentication.AdminSecret = v
	}
	if v, ok := lookup("DB_PASSWORD"); ok && (c.DB.Password.Value == "" || strings.EqualFold(c.DB.Password.Type, "env")) {
		c.DB.Password.Value = v
	}
	if v, ok := lookup("LLM_URL"); ok {
		c.THIRD_PARTY.LLMURL = v
	}
	if v, ok := lookup("LLM_MODEL"); ok {
		c.THIRD_PARTY.LLMModel = v
	}
}

// Validate reports settings the server cannot start without.
func (c *APIConfig) Validate() error {
	var errs []error
	if c.Authentication.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.Authentication.AdminSecret == "" {
		errs = append(errs, errors.New("ADMIN_SECRET is not set"))
	}
	if c.DB.Host == "" || c.DB.Name == "" {
		errs = append(errs, errors.New("DB host and name are required"))
	}
	return errors.Join(errs...)
}

// LoadConfig loads the XML configuration and the environment (including an
// optional .env file) once per process.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		// a missing .env is fine
		_ = godotenv.Load()

		data, err := os.ReadFile(xmlPath)
		if err != nil {
			loadErr = fmt.Errorf("reading config %s: %w", xmlPath, err)
			return
		}
		newCfg, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		newCfg.ApplyEnv(os.LookupEnv)
		cfg = newCfg
	})
	return cfg, loadErr
}

// GetConfig returns the loaded configuration.
func GetConfig() *APIConfig {
	return cfg
}
