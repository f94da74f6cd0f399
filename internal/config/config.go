package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	MacroLLM  MacroLLMConfig  `mapstructure:"macro_llm"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type AppConfig struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	Port      int    `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	SecretKey string `mapstructure:"secret_key"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	PoolSize   int    `mapstructure:"pool_size"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

// MacroLLMConfig configures the external language-model adapter used by the
// Macro Target Oracle (§4.1) and, with a distinct prompt, the generative
// backstop (§4.7 step 5).
type MacroLLMConfig struct {
	Provider      string        `mapstructure:"provider"` // openai | wenxin | tongyi
	APIEndpoint   string        `mapstructure:"api_endpoint"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// PlannerConfig tunes the generation coordinator's routing and time budget
// (spec §4.7, §5).
type PlannerConfig struct {
	PersonalizationThreshold int           `mapstructure:"personalization_threshold"` // §4.7 step 1
	SolverTimeBudget         time.Duration `mapstructure:"solver_time_budget"`        // §4.4, hard 10s cap
	RequestTimeBudget        time.Duration `mapstructure:"request_time_budget"`       // §4.7, §5, hard 15s cap
	SlowStageAfter           time.Duration `mapstructure:"slow_stage_after"`          // §4.7, 10s "taking longer than usual" marker
	BackstopTimeout          time.Duration `mapstructure:"backstop_timeout"`          // §5, 8s
	MacroLLMTimeout          time.Duration `mapstructure:"macro_llm_timeout"`         // §5, 8s MTO budget; mirrors macro_llm.timeout
	PoolFloor                int           `mapstructure:"pool_floor"`                // §4.2, ~84 recipes; not read: catalog uses its PoolFloor constant
	PoolCap                  int           `mapstructure:"pool_cap"`                  // §4.2, ~300-500 recipes; not read: catalog uses its PoolCap constant
	LikedScore               float64       `mapstructure:"liked_score"`               // §4.4 objective weight for liked recipes; not read: optimize uses its LikedScore constant
	DislikedScore            float64       `mapstructure:"disliked_score"`            // §4.4 objective weight otherwise; not read: optimize uses its DislikedScore constant
	LLMCallsPerSecond        float64       `mapstructure:"llm_calls_per_second"`      // process-wide cap on outbound macro_llm/backstop calls
	LLMBurst                 int           `mapstructure:"llm_burst"`                 // token bucket burst size for the above
}

type RateLimitConfig struct {
	APICallsPerMinute    int64 `mapstructure:"api_calls_per_minute"`
	APICallsPerHour      int64 `mapstructure:"api_calls_per_hour"`
	GenerationsPerMinute int64 `mapstructure:"generations_per_minute"`
	GenerationsPerHour   int64 `mapstructure:"generations_per_hour"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

var GlobalConfig *Config

func InitConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/mealplanner")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MEALPLANNER")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// The coordinator bounds its MTO call through PlannerConfig rather than
	// reaching into MacroLLMConfig directly; keep the two in sync unless the
	// operator set planner.macro_llm_timeout explicitly.
	if !viper.IsSet("planner.macro_llm_timeout") && cfg.MacroLLM.Timeout > 0 {
		cfg.Planner.MacroLLMTimeout = cfg.MacroLLM.Timeout
	}

	GlobalConfig = &cfg
	return nil
}

func setDefaults() {
	viper.SetDefault("app.port", 8080)
	viper.SetDefault("app.mode", "debug")
	viper.SetDefault("app.name", "Meal Plan Generator")
	viper.SetDefault("app.version", "1.0.0")

	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.sslmode", "disable")
	viper.SetDefault("database.postgres.max_open_conns", 25)
	viper.SetDefault("database.postgres.max_idle_conns", 5)
	viper.SetDefault("database.postgres.conn_max_lifetime", "300s")

	viper.SetDefault("database.redis.port", 6379)
	viper.SetDefault("database.redis.db", 0)
	viper.SetDefault("database.redis.pool_size", 10)
	viper.SetDefault("database.redis.max_retries", 3)

	viper.SetDefault("jwt.access_token_expire", "3600s")
	viper.SetDefault("jwt.refresh_token_expire", "604800s")

	viper.SetDefault("macro_llm.provider", "openai")
	viper.SetDefault("macro_llm.timeout", "8s")
	viper.SetDefault("macro_llm.retry_attempts", 2)
	viper.SetDefault("macro_llm.retry_delay", "500ms")

	// Planner defaults mirror spec §4.4, §4.7, §5 verbatim.
	viper.SetDefault("planner.personalization_threshold", 10)
	viper.SetDefault("planner.solver_time_budget", "10s")
	viper.SetDefault("planner.request_time_budget", "15s")
	viper.SetDefault("planner.slow_stage_after", "10s")
	viper.SetDefault("planner.backstop_timeout", "8s")
	viper.SetDefault("planner.macro_llm_timeout", "8s")
	viper.SetDefault("planner.pool_floor", 84)
	viper.SetDefault("planner.pool_cap", 400)
	viper.SetDefault("planner.liked_score", 10.0)
	viper.SetDefault("planner.disliked_score", 1.0)
	viper.SetDefault("planner.llm_calls_per_second", 5.0)
	viper.SetDefault("planner.llm_burst", 10)

	viper.SetDefault("rate_limit.api_calls_per_minute", 60)
	viper.SetDefault("rate_limit.api_calls_per_hour", 1000)
	viper.SetDefault("rate_limit.generations_per_minute", 5)
	viper.SetDefault("rate_limit.generations_per_hour", 30)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.filename", "logs/app.log")
	viper.SetDefault("log.max_size", 500)
	viper.SetDefault("log.max_backups", 10)
	viper.SetDefault("log.max_age", 30)
}

func GetDSN() string {
	pg := GlobalConfig.Database.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode)
}

func GetRedisAddr() string {
	r := GlobalConfig.Database.Redis
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
