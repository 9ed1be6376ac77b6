// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
// main で一度だけ生成し、以降は読み取り専用で各コンポーネントに渡します。
type Config struct {
	// セッション設定
	SessionSecret          string        `validate:"required,min=16"` // セッションクッキー署名用の秘密鍵
	SessionSecretGenerated bool          // SESSION_SECRET 未設定のためプロセス内で生成した場合 true
	SessionCookieName      string        `validate:"required"`
	SessionMaxAge          time.Duration `validate:"gt=0"` // セッションの絶対有効期限
	SessionIdleTimeout     time.Duration `validate:"gt=0"` // 無操作タイムアウト
	SessionCookieSecure    bool

	// データベース設定
	DatabaseDriver string `validate:"oneof=sqlite mysql"`
	DatabaseURL    string `validate:"required"` // sqlite のファイルパス、または mysql の DSN

	// サーバー設定
	Port  string `validate:"required,numeric"`
	Debug bool   // 詳細なエラーページと gin の debug モードを有効にする

	// CORS設定
	CORSEnabled        bool
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ログ設定
	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string // 空でなければローテーション付きファイルにも出力

	// 認証設定
	BcryptCost           int `validate:"gte=4,lte=31"`
	LoginMaxAttempts     int `validate:"gte=1"`
	LoginLimiterRedisURL string
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// セッション設定
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "session"),
		SessionMaxAge:       time.Duration(getEnvAsInt("SESSION_MAX_AGE_MINUTES", 720)) * time.Minute,
		SessionIdleTimeout:  time.Duration(getEnvAsInt("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),

		// データベース設定
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseURL:    getEnv("DATABASE_URL", "users.db"),

		// サーバー設定
		Port:  getEnv("PORT", "8000"),
		Debug: getEnvAsBool("DEBUG", false),

		// CORS設定
		CORSEnabled:        getEnvAsBool("CORS_ENABLED", false),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// ログ設定
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:  getEnv("LOG_FILE", ""),

		// 認証設定
		BcryptCost:           getEnvAsInt("BCRYPT_COST", 10),
		LoginMaxAttempts:     getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginLimiterRedisURL: getEnv("LOGIN_LIMITER_REDIS_URL", ""),
	}

	// 開発時は秘密鍵を都度生成する（再起動でセッションは失効する）
	if config.SessionSecret == "" && config.Debug {
		secret, err := generateSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		config.SessionSecret = secret
		config.SessionSecretGenerated = true
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required unless DEBUG=true")
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config field %s: failed on %q", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}

	return nil
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
