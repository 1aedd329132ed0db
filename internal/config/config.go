package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/JoeShih716/go-tx-engine/internal/logger"
	"github.com/JoeShih716/go-tx-engine/pkg/mysql"
)

// EnvPrefix 環境變數前綴，例如 LEDGER_OUTPUT_FORMAT
const EnvPrefix = "LEDGER"

type Config struct {
	Log    logger.Config `mapstructure:"log"`
	Input  InputConfig   `mapstructure:"input"`
	Output OutputConfig  `mapstructure:"output"`
	// 未啟用時不檢查連線設定
	MySQL MySQLConfig `mapstructure:"mysql" validate:"-"`
}

type InputConfig struct {
	// Strict 遇到無法解析的行即中止
	Strict bool `mapstructure:"strict"`
	// Buffer 讀取端與套用端之間的輸送帶大小
	Buffer int `mapstructure:"buffer" validate:"gte=1,lte=65536"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=csv json yaml table"`
	// Path 空字串表示 stdout
	Path string `mapstructure:"path"`
	// Rejections 拒絕報表 (JSON Lines) 路徑，空字串表示不輸出
	Rejections string `mapstructure:"rejections"`
}

type MySQLConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	mysql.Config `mapstructure:",squash"`
}

var defaults = map[string]any{
	"log.level":               "info",
	"log.format":              "json",
	"input.strict":            false,
	"input.buffer":            1024,
	"output.format":           "csv",
	"output.path":             "",
	"output.rejections":       "",
	"mysql.enabled":           false,
	"mysql.host":              "127.0.0.1",
	"mysql.port":              3306,
	"mysql.user":              "",
	"mysql.password":          "",
	"mysql.dbname":            "",
	"mysql.max_open_conns":    10,
	"mysql.max_idle_conns":    2,
	"mysql.conn_max_lifetime": 30 * time.Minute,
	"mysql.max_retries":       3,
	"mysql.retry_interval":    2 * time.Second,
	"mysql.log_level":         "error",
}

// Load 載入設定：預設值 < 設定檔 < 環境變數
//
// 參數:
//
//	path: YAML 設定檔路徑，空字串表示只用預設值與環境變數
//
// 回傳:
//
//	Config: 設定
//	error: 讀檔、解析或驗證錯誤
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 檢查設定值
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.MySQL.Enabled {
		if err := validate.Struct(c.MySQL.Config); err != nil {
			return fmt.Errorf("invalid mysql config: %w", err)
		}
	}
	if c.Output.Path != "" && c.Output.Path == c.Output.Rejections {
		return errors.New("invalid config: output.path and output.rejections must differ")
	}
	return nil
}
