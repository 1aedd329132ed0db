package mysql

import (
	"fmt"
	"time"
)

// Config 定義 MySQL 連線與連線池的配置
type Config struct {
	Host     string `mapstructure:"host" validate:"required"`       // 資料庫主機地址
	Port     int    `mapstructure:"port" validate:"gt=0,lte=65535"` // 資料庫埠號 (預設 3306)
	User     string `mapstructure:"user" validate:"required"`       // 使用者名稱
	Password string `mapstructure:"password"`                       // 密碼
	DBName   string `mapstructure:"dbname" validate:"required"`     // 資料庫名稱

	// 連線池設定 (Connection Pool)
	// 參考: https://github.com/go-sql-driver/mysql#important-settings
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`    // 最大開啟連線數
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`    // 最大閒置連線數
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"` // 連線最大存活時間

	// 連線重試
	MaxRetries    int           `mapstructure:"max_retries" validate:"gte=1"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`

	// GORM 設定
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"` // Log 等級
}

// DSN (Data Source Name) 產生連線字串
// 格式: user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}
