package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inkchamber/dashboard-api/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"

	LockMutex = "mutex"
	LockFile  = "file"
)

type Config struct {
	App              App              `mapstructure:",squash"`
	Server           Server           `mapstructure:",squash"`
	State            State            `mapstructure:",squash"`
	Stream           Stream           `mapstructure:",squash"`
	Webhook          Webhook          `mapstructure:",squash"`
	Auth             Auth             `mapstructure:",squash"`
	Audit            Audit            `mapstructure:",squash"`
	Database         Database         `mapstructure:",squash"`
	StateRecalculate StateRecalculate `mapstructure:",squash"`
	Leads            Leads            `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
	Env      string `mapstructure:"app_env"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type State struct {
	Backend                string        `mapstructure:"state_backend"`
	Dir                    string        `mapstructure:"state_dir"`
	Lock                   string        `mapstructure:"state_lock"`
	LockRetryInterval      time.Duration `mapstructure:"state_lock_retry_interval"`
	LockMaxWait            time.Duration `mapstructure:"state_lock_max_wait"`
	DefaultValuePerBooking int64         `mapstructure:"default_value_per_booking"`
}

type Stream struct {
	HeartbeatInterval time.Duration `mapstructure:"stream_heartbeat_interval"`
	ClientBuffer      int           `mapstructure:"stream_client_buffer"`
}

type Webhook struct {
	CalendlySecret string   `mapstructure:"calendly_webhook_secret"`
	AllowedIPs     []string `mapstructure:"allowed_ips"`
	RatePerSecond  float64  `mapstructure:"webhook_rate_per_second"`
	RateBurst      int      `mapstructure:"webhook_rate_burst"`
	APIKey         string   `mapstructure:"dashboard_api_key"`
}

type Auth struct {
	AdminPassword     string        `mapstructure:"admin_password"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	SessionSecret     string        `mapstructure:"session_secret"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	SecureCookies     bool          `mapstructure:"secure_cookies"`
}

type Audit struct {
	Backend     string `mapstructure:"audit_backend"`
	MemoryLimit int    `mapstructure:"audit_memory_limit"`
}

type Database struct {
	DSN          string `mapstructure:"-"`
	Enabled      bool   `mapstructure:"database_enabled"`
	Driver       string `mapstructure:"database_driver"`
	Password     string `mapstructure:"database_password"`
	URL          string `mapstructure:"database_url"`
	User         string `mapstructure:"database_user"`
	MaxOpenConns int    `mapstructure:"database_max_open_conns"`
}

type StateRecalculate struct {
	CronSchedule string `mapstructure:"state_recalculate_cron"`
	Enabled      bool   `mapstructure:"state_recalculate_enabled"`
}

type Leads struct {
	Backend string `mapstructure:"leads_backend"`
	Dir     string `mapstructure:"leads_dir"`
}

// RequiresDatabase indica se algum backend depende do PostgreSQL
func (c *Config) RequiresDatabase() bool {
	return c.Database.Enabled || c.Audit.Backend == BackendPostgres || c.Leads.Backend == BackendPostgres
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "debug")
	viper.SetDefault("APP_ENV", "development")

	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("TRUSTED_PROXIES", "") // vazio = cabeçalhos X-Forwarded-For ignorados

	viper.SetDefault("STATE_BACKEND", BackendFile)
	viper.SetDefault("STATE_DIR", "outputs/dashboard")
	viper.SetDefault("STATE_LOCK", LockMutex)
	viper.SetDefault("STATE_LOCK_RETRY_INTERVAL", "50ms")
	viper.SetDefault("STATE_LOCK_MAX_WAIT", "0s") // 0 = sem limite
	viper.SetDefault("DEFAULT_VALUE_PER_BOOKING", 100)

	viper.SetDefault("STREAM_HEARTBEAT_INTERVAL", "30s")
	viper.SetDefault("STREAM_CLIENT_BUFFER", 16)

	viper.SetDefault("CALENDLY_WEBHOOK_SECRET", "")
	viper.SetDefault("ALLOWED_IPS", "")
	viper.SetDefault("WEBHOOK_RATE_PER_SECOND", 10)
	viper.SetDefault("WEBHOOK_RATE_BURST", 10)
	viper.SetDefault("DASHBOARD_API_KEY", "")

	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("SESSION_SECRET", "your_session_secret") // ONLY LOCAL
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("SECURE_COOKIES", false)

	viper.SetDefault("AUDIT_BACKEND", BackendFile)
	viper.SetDefault("AUDIT_MEMORY_LIMIT", 1000)

	viper.SetDefault("DATABASE_ENABLED", false)
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/dashboard?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)

	viper.SetDefault("STATE_RECALCULATE_CRON", "*/15 * * * *") // A cada 15 minutos
	viper.SetDefault("STATE_RECALCULATE_ENABLED", true)

	viper.SetDefault("LEADS_BACKEND", BackendFile)
	viper.SetDefault("LEADS_DIR", "data/leads")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Server.AllowedOrigins = compact(config.Server.AllowedOrigins)
	config.Webhook.AllowedIPs = compact(config.Webhook.AllowedIPs)
	config.Server.TrustedProxies = compact(config.Server.TrustedProxies)

	if err := config.validate(); err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

func (c *Config) validate() error {
	switch c.State.Backend {
	case BackendFile, BackendMemory:
	default:
		return fmt.Errorf("STATE_BACKEND inválido: %q", c.State.Backend)
	}

	switch c.State.Lock {
	case LockMutex, LockFile:
	default:
		return fmt.Errorf("STATE_LOCK inválido: %q", c.State.Lock)
	}

	if c.State.Lock == LockFile && c.State.Backend != BackendFile {
		return fmt.Errorf("STATE_LOCK=file exige STATE_BACKEND=file")
	}

	switch c.Audit.Backend {
	case BackendFile, BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("AUDIT_BACKEND inválido: %q", c.Audit.Backend)
	}

	switch c.Leads.Backend {
	case BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("LEADS_BACKEND inválido: %q", c.Leads.Backend)
	}

	if _, err := utils.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		logrus.Warn("ADMIN_PASSWORD não configurado, login administrativo desabilitado")
	}

	if c.Webhook.CalendlySecret == "" {
		logrus.Warn("CALENDLY_WEBHOOK_SECRET não configurado, webhooks serão rejeitados")
	}

	return nil
}

// compact remove espaços e entradas vazias vindas de listas separadas por vírgula
func compact(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando variáveis de ambiente")
}
