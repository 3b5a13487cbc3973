// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	DBDriver            string        `mapstructure:"DB_DRIVER"`
	DBSource            string        `mapstructure:"DB_SOURCE"`
	ServerAddress       string        `mapstructure:"SERVER_ADDRESS"`
	TokenKind           string        `mapstructure:"TOKEN_KIND"`
	TokenSymmetricKey   string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	Environement        string        `mapstructure:"GO_ENV"`

	// JobToken is the shared secret expected in the X-Job-Token header.
	// An empty value disables token triggers, only sessions are accepted then.
	JobToken          string `mapstructure:"JOB_TOKEN"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	// DayOffset is the fixed UTC offset of the civil calendar used for day buckets.
	DayOffset           time.Duration `mapstructure:"DAY_OFFSET"`
	InterestTypeCodes   string        `mapstructure:"INTEREST_TYPE_CODES"`
	InterestLabelMarker string        `mapstructure:"INTEREST_LABEL_MARKER"`
	HoldingsTypeCodes   string        `mapstructure:"HOLDINGS_TYPE_CODES"`

	QuoteBaseURL       string        `mapstructure:"QUOTE_BASE_URL"`
	QuoteTimeout       time.Duration `mapstructure:"QUOTE_TIMEOUT"`
	QuoteRatePerSecond float64       `mapstructure:"QUOTE_RATE_PER_SECOND"`
	QuoteCacheTTL      time.Duration `mapstructure:"QUOTE_CACHE_TTL"`

	RedisAddress string        `mapstructure:"REDIS_ADDRESS"`
	JobLockTTL   time.Duration `mapstructure:"JOB_LOCK_TTL"`

	MigrationURL   string `mapstructure:"MIGRATION_URL"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	setDefaults(v)

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TOKEN_KIND", "paseto")
	v.SetDefault("ACCESS_TOKEN_DURATION", 24*time.Hour)
	v.SetDefault("DAY_OFFSET", 8*time.Hour)
	v.SetDefault("INTEREST_TYPE_CODES", "huobi,money_fund")
	v.SetDefault("INTEREST_LABEL_MARKER", "货币基金")
	v.SetDefault("HOLDINGS_TYPE_CODES", "stock")
	v.SetDefault("QUOTE_BASE_URL", "https://query1.finance.yahoo.com")
	v.SetDefault("QUOTE_TIMEOUT", 10*time.Second)
	v.SetDefault("QUOTE_RATE_PER_SECOND", 2.0)
	v.SetDefault("QUOTE_CACHE_TTL", 10*time.Minute)
	v.SetDefault("JOB_LOCK_TTL", 5*time.Minute)
	v.SetDefault("MIGRATIONS_PATH", "db/migration")
}

// SplitList splits a comma separated config value, dropping blanks.
func SplitList(s string) []string {
	var out []string

	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
