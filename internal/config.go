package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Face          FaceConfig          `mapstructure:"face"`
	Attendance    AttendanceConfig    `mapstructure:"attendance"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" validate:"required,min=10,max=15"`
}

// FaceConfig points at the two remote face capabilities.
type FaceConfig struct {
	DetectionURL   string        `mapstructure:"detection_url"`
	ComparisonURL  string        `mapstructure:"comparison_url"`
	CompareTimeout time.Duration `mapstructure:"compare_timeout"`
	JPEGQuality    int           `mapstructure:"jpeg_quality"`
}

type AttendanceConfig struct {
	WorkStart            string        `mapstructure:"work_start"`
	WorkEnd              string        `mapstructure:"work_end"`
	GracePeriodMinutes   int           `mapstructure:"grace_period_minutes"`
	Timezone             string        `mapstructure:"timezone"`
	AdminNumericID       int           `mapstructure:"admin_numeric_id"`
	MaxAttempts          int           `mapstructure:"max_attempts"`
	LockoutRedirectDelay time.Duration `mapstructure:"lockout_redirect_delay"`
	SessionTTL           time.Duration `mapstructure:"session_ttl"`
	StandardWorkHours    float64       `mapstructure:"standard_work_hours"`
}

type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	LeaveSweepSpec     string `mapstructure:"leave_sweep_spec"`
	TimerFinalizerSpec string `mapstructure:"timer_finalizer_spec"`
	FinalizerWorkers   int    `mapstructure:"finalizer_workers"`
	FinalizerQueueSize int    `mapstructure:"finalizer_queue_size"`
}

type CacheConfig struct {
	Driver string        `mapstructure:"driver" validate:"oneof=memory redis"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type StorageConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Window int `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ApplyDefaults fills every zero value that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.OpenAPIPath == "" {
		c.Server.OpenAPIPath = "./api/openapi.yml"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Security.AccessTokenDuration == 0 {
		c.Security.AccessTokenDuration = 12 * time.Hour
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.Face.DetectionURL == "" {
		c.Face.DetectionURL = "http://localhost:5000"
	}
	if c.Face.ComparisonURL == "" {
		c.Face.ComparisonURL = "http://localhost:5001"
	}
	if c.Face.CompareTimeout == 0 {
		c.Face.CompareTimeout = 8 * time.Second
	}
	if c.Face.JPEGQuality == 0 {
		c.Face.JPEGQuality = 70
	}
	if c.Attendance.WorkStart == "" {
		c.Attendance.WorkStart = "09:00"
	}
	if c.Attendance.WorkEnd == "" {
		c.Attendance.WorkEnd = "17:00"
	}
	if c.Attendance.GracePeriodMinutes == 0 {
		c.Attendance.GracePeriodMinutes = 15
	}
	if c.Attendance.AdminNumericID == 0 {
		c.Attendance.AdminNumericID = 1
	}
	if c.Attendance.MaxAttempts == 0 {
		c.Attendance.MaxAttempts = 3
	}
	if c.Attendance.LockoutRedirectDelay == 0 {
		c.Attendance.LockoutRedirectDelay = 3 * time.Second
	}
	if c.Attendance.SessionTTL == 0 {
		c.Attendance.SessionTTL = 10 * time.Minute
	}
	if c.Attendance.StandardWorkHours == 0 {
		c.Attendance.StandardWorkHours = 8
	}
	if c.Scheduler.LeaveSweepSpec == "" {
		c.Scheduler.LeaveSweepSpec = "@hourly"
	}
	if c.Scheduler.TimerFinalizerSpec == "" {
		c.Scheduler.TimerFinalizerSpec = "@every 1m"
	}
	if c.Scheduler.FinalizerWorkers == 0 {
		c.Scheduler.FinalizerWorkers = 4
	}
	if c.Scheduler.FinalizerQueueSize == 0 {
		c.Scheduler.FinalizerQueueSize = 100
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Storage.Folder == "" {
		c.Storage.Folder = "attendance/reference"
	}
	if c.Observability.Metrics.Window == 0 {
		c.Observability.Metrics.Window = 10
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// LoadConfigFromEnv builds the configuration for container deployments where no
// config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:           getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:        getEnv("BASE_URL", ""),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
			OpenAPIPath:    getEnv("OPENAPI_PATH", "./api/openapi.yml"),
			ReadTimeout:    getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Source:       getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Username: getEnv("REDIS_USER", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			AccessTokenDuration: getEnvAsDuration("ACCESS_TOKEN_DURATION", 12*time.Hour),
			BCryptCost:          getEnvAsInt("BCRYPT_COST", 10),
		},
		Face: FaceConfig{
			DetectionURL:   getEnv("FACE_DETECTION_URL", ""),
			ComparisonURL:  getEnv("FACE_COMPARISON_URL", ""),
			CompareTimeout: getEnvAsDuration("FACE_COMPARE_TIMEOUT", 0),
		},
		Attendance: AttendanceConfig{
			WorkStart:          getEnv("WORK_START", ""),
			WorkEnd:            getEnv("WORK_END", ""),
			GracePeriodMinutes: getEnvAsInt("GRACE_PERIOD_MINUTES", 0),
			Timezone:           getEnv("ATTENDANCE_TIMEZONE", ""),
			AdminNumericID:     getEnvAsInt("ADMIN_NUMERIC_ID", 0),
		},
		Scheduler: SchedulerConfig{
			Enabled: getEnv("SCHEDULER_ENABLED", "true") == "true",
		},
		Cache: CacheConfig{
			Driver: getEnv("CACHE_DRIVER", ""),
		},
		Storage: StorageConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", ""),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Attendance.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("attendance config: %v", err))
	}

	if err := c.Face.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("face config: %v", err))
	}

	if c.Cache.Driver == "redis" && c.Redis.Addr == "" {
		errs = append(errs, "cache config: redis driver requires redis.addr")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt secret must be at least 32 characters")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range", c.BCryptCost)
	}
	return nil
}

func (c *AttendanceConfig) Validate() error {
	start, err := time.Parse("15:04", c.WorkStart)
	if err != nil {
		return fmt.Errorf("invalid work_start %q: %w", c.WorkStart, err)
	}
	end, err := time.Parse("15:04", c.WorkEnd)
	if err != nil {
		return fmt.Errorf("invalid work_end %q: %w", c.WorkEnd, err)
	}
	if !end.After(start) {
		return errors.New("work_end must be after work_start")
	}
	if c.GracePeriodMinutes < 0 {
		return errors.New("grace_period_minutes cannot be negative")
	}
	if c.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone; empty means the host zone.
func (c *AttendanceConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *FaceConfig) Validate() error {
	for _, raw := range []string{c.DetectionURL, c.ComparisonURL} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid service url %q: %w", raw, err)
		}
	}
	return nil
}
