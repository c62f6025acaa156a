package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Configはアプリ全体の設定
type Config struct {
	Port string `envconfig:"PORT" required:"true"` // サーバーポート（8080）

	DatabaseURL      string `envconfig:"DATABASE_URL"`                       // あれば最優先
	PostgresUser     string `envconfig:"POSTGRES_USER" required:"true"`      // DBユーザー
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" required:"true"`  // DBパスワード
	PostgresDB       string `envconfig:"POSTGRES_DB" required:"true"`        // DB名
	PostgresHost     string `envconfig:"POSTGRES_HOST" required:"true"`      // DBホスト（localhost）
	PostgresPort     int    `envconfig:"POSTGRES_PORT" required:"true"`      // DBポート（5433）
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"` // sslmode

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"` // JWT署名シークレット

	GoEnv    string `envconfig:"GO_ENV" required:"true"`   // dev/prod
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // zapのレベル
	FEURL    string `envconfig:"FE_URL" default:""`        // フロントURL（CORSなどで使う）

	SessionCookieName string `envconfig:"SESSION_COOKIE_NAME" default:"cart_session"` // 未ログインカート用cookie

	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`                   // 空ならkafka通知なし
	NotifyTopic  string `envconfig:"NOTIFY_TOPIC" default:"order-notifications"` // 通知トピック
}

// Loadは環境変数
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	//空文字も未設定扱い
	required := []struct{ key, value string }{
		{"PORT", cfg.Port},
		{"POSTGRES_USER", cfg.PostgresUser},
		{"POSTGRES_DB", cfg.PostgresDB},
		{"POSTGRES_HOST", cfg.PostgresHost},
		{"JWT_SECRET", cfg.JWTSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Config{}, fmt.Errorf("%s is required", r.key)
		}
	}

	cfg.GoEnv = strings.ToLower(strings.TrimSpace(cfg.GoEnv))
	if cfg.GoEnv != "dev" && cfg.GoEnv != "prod" {
		return Config{}, fmt.Errorf("GO_ENV must be dev or prod")
	}
	if cfg.PostgresPort <= 0 {
		return Config{}, fmt.Errorf("POSTGRES_PORT must be positive")
	}

	return cfg, nil
}

// postgresのDSN
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// cookieのSecure属性
func (c Config) CookieSecure() bool {
	return c.GoEnv == "prod"
}

// カンマ区切りのブローカー一覧
func (c Config) Brokers() []string {
	brokers := []string{}
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
