package config

import (
	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// PaymentConfig 支付平台配置
type PaymentConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"` // webhook 签名密钥
	SiteBaseUrl   string `mapstructure:"site_base_url"`  // 赏金详情页基础URL
}

// TrackerConfig issue 追踪平台配置
type TrackerConfig struct {
	ApiBaseUrl string `mapstructure:"api_base_url"` // API基础URL
	Token      string `mapstructure:"token"`        // 访问令牌
	Timeout    int    `mapstructure:"timeout"`      // 请求超时（秒）
}

// NotifyConfig 通知投递配置
type NotifyConfig struct {
	EmailApiUrl    string `mapstructure:"email_api_url"`    // 邮件投递API
	EmailApiKey    string `mapstructure:"email_api_key"`    // 邮件API密钥
	EmailFrom      string `mapstructure:"email_from"`       // 发件人
	FeedWebhookUrl string `mapstructure:"feed_webhook_url"` // 动态流webhook地址
	Timeout        int    `mapstructure:"timeout"`          // 请求超时（秒）
}

type SchedulerConfig struct {
	Interval           int `mapstructure:"interval"`             // 秒
	PendingExpiryHours int `mapstructure:"pending_expiry_hours"` // 支付超时窗口（小时）
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/bms")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "bounty")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("payment.site_base_url", "http://localhost:3000")
	viper.SetDefault("tracker.api_base_url", "https://api.github.com")
	viper.SetDefault("tracker.timeout", 10)
	viper.SetDefault("notify.timeout", 10)
	viper.SetDefault("scheduler.interval", 300)
	viper.SetDefault("scheduler.pending_expiry_hours", 24)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
