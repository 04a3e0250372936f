package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Teacher access policies for student pages.
const (
	TeacherAccessOwned = "owned" // only the student's own teacher
	TeacherAccessAny   = "any"   // any authenticated teacher
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		WorkDir          string
		RollbarToken     string
		FrontendBaseURL  string
		AccessCodeTTL    time.Duration
		TeacherAccess    string
		defaultFromEmail string

		Server   ServerConfig
		Database DatabaseConfig
		Email    EmailConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	EmailConfig struct {
		Backend        string // console, sendgrid, smtp
		SendgridApiKey string
		SMTPHost       string
		SMTPPort       int
		SMTPUser       string
		SMTPPassword   string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

// NewConfig loads the configuration from the environment.
// Variables are prefixed with the current ENV, eg. DEV_DB_NAME, PROD_SECRET_KEY.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("app_name", "Alama")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("test_mode", false)
	v.SetDefault("secret_key", "x1f!h7+vq$0aq5u%l9zz#8@r+n2(w_5gk&ct3)b^m6d4yj=ep")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("frontend_base_url", "http://localhost:8080")
	v.SetDefault("access_code_ttl", 24*time.Hour)
	v.SetDefault("teacher_access", TeacherAccessOwned)
	v.SetDefault("default_from_email", "noreply@localhost")

	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_addr", ":8000")
	v.SetDefault("server_debug_host", "localhost:4000")
	v.SetDefault("server_shutdown_timeout", 5*time.Second)
	v.SetDefault("jwt_expiration_delta", 7*24*time.Hour)
	v.SetDefault("jwt_refresh_expiration_delta", 4*time.Hour)

	v.SetDefault("db_engine", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_name", "alama")
	v.SetDefault("db_user", "alama")
	v.SetDefault("db_password", "alama")
	v.SetDefault("db_admin_user", "postgres")
	v.SetDefault("db_admin_password", "postgres")
	v.SetDefault("db_disable_tls", true)

	v.SetDefault("email_backend", "console")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("smtp_host", "localhost")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_user", "")
	v.SetDefault("smtp_password", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("test_mode", true)
		v.SetDefault("db_name", "alama_test")
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("app_name"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("test_mode"),
		SecretKey:        v.GetString("secret_key"),
		WorkDir:          wd,
		RollbarToken:     v.GetString("rollbar_token"),
		FrontendBaseURL:  v.GetString("frontend_base_url"),
		AccessCodeTTL:    v.GetDuration("access_code_ttl"),
		TeacherAccess:    v.GetString("teacher_access"),
		defaultFromEmail: v.GetString("default_from_email"),
		Server: ServerConfig{
			Host:                      v.GetString("server_host"),
			Addr:                      v.GetString("server_addr"),
			DebugHost:                 v.GetString("server_debug_host"),
			ShutdownTimeout:           v.GetDuration("server_shutdown_timeout"),
			JWTExpirationDelta:        v.GetDuration("jwt_expiration_delta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwt_refresh_expiration_delta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("db_engine"),
			Host:          v.GetString("db_host"),
			Port:          v.GetInt("db_port"),
			Name:          v.GetString("db_name"),
			User:          v.GetString("db_user"),
			Password:      v.GetString("db_password"),
			AdminUser:     v.GetString("db_admin_user"),
			AdminPassword: v.GetString("db_admin_password"),
			DisableTLS:    v.GetBool("db_disable_tls"),
		},
		Email: EmailConfig{
			Backend:        v.GetString("email_backend"),
			SendgridApiKey: v.GetString("sendgrid_api_key"),
			SMTPHost:       v.GetString("smtp_host"),
			SMTPPort:       v.GetInt("smtp_port"),
			SMTPUser:       v.GetString("smtp_user"),
			SMTPPassword:   v.GetString("smtp_password"),
		},
	}
	if err := conf.validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}

func (c *Config) validate() error {
	switch c.TeacherAccess {
	case TeacherAccessOwned, TeacherAccessAny:
	default:
		return fmt.Errorf("teacher_access must be %q or %q, got %q", TeacherAccessOwned, TeacherAccessAny, c.TeacherAccess)
	}
	if c.AccessCodeTTL <= 0 {
		return fmt.Errorf("access_code_ttl must be positive")
	}
	return nil
}

// NewTestConfig returns a configuration suitable for unit tests, without touching the environment.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "Alama",
		Env:              "TEST",
		Build:            "test",
		Debug:            false,
		TestMode:         true,
		SecretKey:        "secret",
		AccessCodeTTL:    24 * time.Hour,
		TeacherAccess:    TeacherAccessOwned,
		defaultFromEmail: "noreply@localhost",
		Server: ServerConfig{
			Host:                      "localhost",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Email: EmailConfig{Backend: "console"},
	}
}
