package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Email    EmailConfig
	Reports  ReportsConfig
	KPI      KPIConfig
	Seed     SeedConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int // секунды
	WriteTimeout int // секунды
	// CORSOrigins: разрешенные источники; пустой список разрешает любой
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит настройки подключения к Redis.
// Поддерживает режимы: single, sentinel, cluster. Пустой адрес отключает кеш.
type RedisConfig struct {
	Mode       string   `mapstructure:"mode"`
	Addrs      []string `mapstructure:"addrs"`
	Addr       string   `mapstructure:"addr"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	MasterName string   `mapstructure:"master_name"`
	KeyPrefix  string   `mapstructure:"key_prefix"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно)
	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// Enabled сообщает, задан ли хотя бы один адрес Redis
func (r RedisConfig) Enabled() bool {
	return r.Addr != "" || len(r.Addrs) > 0
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret            string `mapstructure:"secret"`
	ExpirationHrs     int    `mapstructure:"expirationHrs"`
	WSTicketExpirySec int    `mapstructure:"wsTicketExpirySec"` // Время жизни тикета для WebSocket в секундах
}

// StorageConfig содержит настройки хранения фотографий аудитов
type StorageConfig struct {
	UploadDir     string `mapstructure:"upload_dir"`
	PublicPrefix  string `mapstructure:"public_prefix"`
	MaxImageBytes int64  `mapstructure:"max_image_bytes"`
}

// EmailConfig содержит настройки Resend. Пустой APIKey отключает отправку.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// ReportsConfig содержит настройки рассылки отчетов
type ReportsConfig struct {
	Enabled       bool
	SendHour      int           `mapstructure:"send_hour"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	Timezone      string
}

// KPIConfig содержит настройки показателей
type KPIConfig struct {
	ComplianceThreshold float64       `mapstructure:"compliance_threshold"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// SeedConfig содержит настройки начального наполнения БД
type SeedConfig struct {
	Enabled       bool
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения (для golang-migrate)
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readTimeout", 15)
	vip.SetDefault("server.writeTimeout", 30)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.key_prefix", "coffee-audit:")
	vip.SetDefault("jwt.expirationHrs", 24*7)
	vip.SetDefault("jwt.wsTicketExpirySec", 60)
	vip.SetDefault("storage.upload_dir", "static/uploads")
	vip.SetDefault("storage.public_prefix", "/static/uploads")
	vip.SetDefault("storage.max_image_bytes", 5<<20)
	vip.SetDefault("email.from", "Caribou Coffee Report <noreply@caribou.com>")
	vip.SetDefault("reports.enabled", true)
	vip.SetDefault("reports.send_hour", 7)
	vip.SetDefault("reports.check_interval", time.Minute)
	vip.SetDefault("reports.timezone", "Africa/Casablanca")
	vip.SetDefault("kpi.compliance_threshold", 80)
	vip.SetDefault("kpi.cache_ttl", 5*time.Minute)
	vip.SetDefault("seed.enabled", true)
	vip.SetDefault("seed.admin_email", "admin@caribou.ma")
	vip.SetDefault("seed.admin_password", "admin")

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")
	vip.BindEnv("redis.key_prefix", "REDIS_KEY_PREFIX")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")
	vip.BindEnv("jwt.wsTicketExpirySec", "JWT_WSTICKETEXPIRYSEC")

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.cors_origins", "SERVER_CORS_ORIGINS")

	vip.BindEnv("storage.upload_dir", "STORAGE_UPLOAD_DIR")
	vip.BindEnv("storage.public_prefix", "STORAGE_PUBLIC_PREFIX")
	vip.BindEnv("storage.max_image_bytes", "STORAGE_MAX_IMAGE_BYTES")

	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	vip.BindEnv("reports.enabled", "REPORTS_ENABLED")
	vip.BindEnv("reports.send_hour", "REPORTS_SEND_HOUR")
	vip.BindEnv("reports.timezone", "REPORTS_TIMEZONE")

	vip.BindEnv("kpi.compliance_threshold", "KPI_COMPLIANCE_THRESHOLD")
	vip.BindEnv("kpi.cache_ttl", "KPI_CACHE_TTL")

	vip.BindEnv("seed.enabled", "SEED_ENABLED")
	vip.BindEnv("seed.admin_email", "SEED_ADMIN_EMAIL")
	vip.BindEnv("seed.admin_password", "SEED_ADMIN_PASSWORD")

	// 3. Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// 4. Пытаемся прочитать файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 5. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// REDIS_ADDRS и SERVER_CORS_ORIGINS из env приходят одной строкой через запятую
	cfg.Redis.Addrs = splitList(cfg.Redis.Addrs)
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	// 6. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Enabled: %t (mode: %s)", cfg.Redis.Enabled(), cfg.Redis.Mode)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("Upload Dir: %s", cfg.Storage.UploadDir)
		log.Printf("Email Enabled: %t", cfg.Email.ResendAPIKey != "")
		log.Printf("Reports Enabled: %t (hour: %d, tz: %s)", cfg.Reports.Enabled, cfg.Reports.SendHour, cfg.Reports.Timezone)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// 7. Проверка обязательных параметров
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("JWT secret must be at least 16 characters (check JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if os.Getenv("GIN_MODE") == "release" {
		if c.Database.Password == "" {
			return fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
		}
		if c.Seed.Enabled && c.Seed.AdminPassword == "admin" {
			log.Println("Warning: seeding is enabled with the default admin password in release mode.")
		}
	}
	if c.Reports.SendHour < 0 || c.Reports.SendHour > 23 {
		return fmt.Errorf("reports.send_hour must be in 0..23, got %d", c.Reports.SendHour)
	}
	if c.KPI.ComplianceThreshold <= 0 || c.KPI.ComplianceThreshold > 100 {
		return fmt.Errorf("kpi.compliance_threshold must be in (0, 100], got %v", c.KPI.ComplianceThreshold)
	}
	return nil
}

// Location возвращает часовой пояс рассылки отчетов
func (r ReportsConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		log.Printf("Предупреждение: неизвестный часовой пояс '%s', используется локальный: %v", r.Timezone, err)
		return time.Local
	}
	return loc
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
