// Package config 提供服务配置（环境变量 + 默认值）
package config

import (
	"fmt"
	"os"
	"strings"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 考勤重建服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	// 重建流水线配置
	Rebuild struct {
		GapThresholdMinutes int      // Burst 合并间隔阈值（分钟），默认 2
		AllowedStatusCodes  []string // 刷卡状态码允许名单，空表示全部接受
		Policy              string   // 评估策略："strict" 或 "tolerant"
		OvernightShiftCode  string   // 指定的跨夜班次代码
	}

	// Stream 配置
	Stream struct {
		SwipeStream   string // 刷卡批次输入流
		RecordStream  string // 考勤记录输出流
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int64
	}

	// 模板缓存配置
	Cache struct {
		TemplateKeyPrefix string // 班次模板缓存键前缀，如 "attendance:template:"
		TemplateTTL       int    // 模板缓存 TTL（秒），默认 300
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = 5432
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "attendance")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Rebuild.GapThresholdMinutes = getEnvInt("REBUILD_GAP_MINUTES", 2)
	cfg.Rebuild.AllowedStatusCodes = getEnvList("REBUILD_ALLOWED_STATUS_CODES", []string{"0", "1"})
	cfg.Rebuild.Policy = getEnv("REBUILD_POLICY", "tolerant")
	cfg.Rebuild.OvernightShiftCode = getEnv("REBUILD_OVERNIGHT_SHIFT", "C")

	cfg.Stream.SwipeStream = getEnv("STREAM_SWIPE", "attendance:swipes")
	cfg.Stream.RecordStream = getEnv("STREAM_RECORDS", "attendance:records")
	cfg.Stream.ConsumerGroup = getEnv("STREAM_GROUP", "attendance-rebuilder")
	cfg.Stream.ConsumerName = getEnv("STREAM_CONSUMER", "rebuilder-1")
	cfg.Stream.BatchSize = 10

	cfg.Cache.TemplateKeyPrefix = getEnv("CACHE_TEMPLATE_PREFIX", "attendance:template:")
	cfg.Cache.TemplateTTL = 300 // 5分钟

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var out []string
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
