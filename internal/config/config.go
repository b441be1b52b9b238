package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストレージの種類（ウィッシュリストの保存先）
const (
	StorageBackendPostgres = "postgres"
	StorageBackendRedis    = "redis"
	StorageBackendMemory   = "memory"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	ContentProjectID  string // コンテンツAPIのプロジェクトID
	ContentDataset    string // データセット名（production）
	ContentAPIVersion string // APIバージョン（2025-01-13）
	ContentToken      string // 書き込み用トークン（importerのみ）
	ContentUseCDN     bool   // CDN経由で読むか

	StorageBackend string // postgres / redis / memory
	DatabaseURL    string // DATABASE_URL（空ならPOSTGRES_*から組み立てる）
	RedisURL       string // REDIS_URL（空ならキャッシュはプロセス内）
	CacheTTL       time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AuthJWTSecret string // 認証プロバイダのセッショントークン検証用

	GoEnv         string // dev/prod
	FEURL         string // フロントURL（CORSで使う）
	CookieSecure  bool
	CheckoutDelay time.Duration // 注文シミュレーションの待ち時間
	PageSizes     []int         // 1ページの表示件数の選択肢
	SessionIdle   time.Duration // セッションを破棄するまでの無操作時間
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		ContentProjectID:  os.Getenv("CONTENT_PROJECT_ID"),
		ContentDataset:    os.Getenv("CONTENT_DATASET"),
		ContentAPIVersion: getenv("CONTENT_API_VERSION", "2025-01-13"),
		ContentToken:      os.Getenv("CONTENT_TOKEN"),

		StorageBackend: getenv("STORAGE_BACKEND", StorageBackendPostgres),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),

		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: os.Getenv("FE_URL"),
	}

	var err error
	if cfg.ContentUseCDN, err = envBool("CONTENT_USE_CDN", false); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = envBool("COOKIE_SECURE", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutDelay, err = envDuration("CHECKOUT_DELAY", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdle, err = envDuration("SESSION_IDLE", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.PageSizes, err = envInts("PAGE_SIZES", []int{16, 32, 64}); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.ContentProjectID == "" {
		return Config{}, fmt.Errorf("CONTENT_PROJECT_ID is required")
	}
	if cfg.ContentDataset == "" {
		return Config{}, fmt.Errorf("CONTENT_DATASET is required")
	}
	switch cfg.StorageBackend {
	case StorageBackendPostgres, StorageBackendMemory:
	case StorageBackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be one of postgres, redis, memory")
	}
	if cfg.GoEnv != "dev" && cfg.AuthJWTSecret == "" {
		return Config{}, fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	return cfg, nil
}

// ContentSettings はimporterが使う設定（コンテンツAPIのみ）
type ContentSettings struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	RedisURL   string // 空なら商品キャッシュは捨てない
}

// LoadContent はimporter用。書き込みにはトークンが要る。
func LoadContent() (ContentSettings, error) {
	cs := ContentSettings{
		ProjectID:  os.Getenv("CONTENT_PROJECT_ID"),
		Dataset:    os.Getenv("CONTENT_DATASET"),
		APIVersion: getenv("CONTENT_API_VERSION", "2025-01-13"),
		Token:      os.Getenv("CONTENT_TOKEN"),
		RedisURL:   os.Getenv("REDIS_URL"),
	}
	if cs.ProjectID == "" {
		return ContentSettings{}, fmt.Errorf("CONTENT_PROJECT_ID is required")
	}
	if cs.Dataset == "" {
		return ContentSettings{}, fmt.Errorf("CONTENT_DATASET is required")
	}
	return cs, nil
}

// Addr は echo に渡す listen アドレス
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be >= 0", key)
	}
	return d, nil
}

// カンマ区切りの正の整数
func envInts(key string, def []int) ([]int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%s must be number list: %w", key, err)
		}
		if i < 1 {
			return nil, fmt.Errorf("%s must be positive", key)
		}
		out = append(out, i)
	}
	return out, nil
}
