package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"fundmatch"
	"fundmatch/app/handler"
	"fundmatch/bot"
	"fundmatch/internal/db"
	"fundmatch/internal/util"
	"fundmatch/scrape"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configByte []byte

// 암호화(enc:) 값 복호화 키
const secretKeyEnv = "FUNDMATCH_SECRET_KEY"

type Config struct {
	Log string `yaml:"log"`
	App struct {
		Port     int           `yaml:"port"`
		JwtKey   string        `yaml:"jwtkey"`
		Cors     string        `yaml:"cors"`
		TokenTTL time.Duration `yaml:"token_ttl"`
		ResetTTL time.Duration `yaml:"reset_ttl"`
	} `yaml:"app"`

	Db struct {
		Driver   string `yaml:"driver"`
		Path     string `yaml:"path"`
		User     string `yaml:"user"`
		Password string `yaml:"pwd"`
		IP       string `yaml:"ip"`
		Port     string `yaml:"port"`
		Scheme   string `yaml:"scheme"`
	} `yaml:"db"`

	Redis struct {
		IP       string `yaml:"ip"`
		Port     string `yaml:"port"`
		Password string `yaml:"pwd"`
		Db       int    `yaml:"db"`
	} `yaml:"redis"`

	Ingest struct {
		Url         string        `yaml:"url"`
		Limit       int           `yaml:"limit"`
		Timeout     time.Duration `yaml:"timeout"`
		ClassPolicy string        `yaml:"class_policy"`
		Seed        uint64        `yaml:"seed"`
		LockTTL     time.Duration `yaml:"lock_ttl"`
		RiskFree    float64       `yaml:"risk_free"`
	} `yaml:"ingest"`

	Auth struct {
		MaxFailures int64         `yaml:"max_failures"`
		Lockout     time.Duration `yaml:"lockout"`
	} `yaml:"auth"`

	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		ChatId  string `yaml:"chatId"`
		Token   string `yaml:"token"`
	} `yaml:"telegram"`
}

func NewConfig() (*Config, error) {
	return newConfig(configByte)
}

func newConfig(raw []byte) (*Config, error) {

	// .env 파일은 선택. 없으면 프로세스 환경 변수만 사용
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".env 로드 실패. %w", err)
	}

	var ConfigInfo Config = Config{}

	err := yaml.Unmarshal(raw, &ConfigInfo)
	if err != nil {
		return nil, err
	}

	if err := override(&ConfigInfo); err != nil {
		return nil, err
	}

	if err := decode(&ConfigInfo); err != nil {
		return nil, err
	}

	return &ConfigInfo, nil
}

func (c Config) LogLevel() (zerolog.Level, error) {

	level, err := zerolog.ParseLevel(c.Log)
	if err != nil {
		return zerolog.InfoLevel, err // Default로는 Info 레벨 설정
	}

	return level, nil
}

func (c Config) BotConfig() (*bot.TeleBotConfig, error) {

	chatId, err := strconv.ParseInt(c.Telegram.ChatId, 10, 64)
	if err != nil {
		return nil, err
	}

	return &bot.TeleBotConfig{
		Token:  c.Telegram.Token,
		ChatId: chatId,
	}, nil
}

func (c Config) DbConfig() (*db.DbConfig, error) {
	switch c.Db.Driver {
	case "mysql":
		return db.NewMysqlConfig(c.Db.User, c.Db.Password, c.Db.IP, c.Db.Port, c.Db.Scheme), nil
	case "sqlite", "":
		return db.NewSqliteConfig(c.Db.Path), nil
	}
	return nil, fmt.Errorf("지원하지 않는 db driver: %q", c.Db.Driver)
}

func (c Config) RedisConfig() *db.RedisConfig {
	return db.NewRedisConfig(c.Redis.Password, c.Redis.IP, c.Redis.Port, c.Redis.Db)
}

func (c Config) IngestConfig() (fundmatch.IngestConfig, error) {

	policy := fundmatch.ClassPolicy(c.Ingest.ClassPolicy)
	switch policy {
	case fundmatch.ClassPlaceholder, fundmatch.ClassRandom, "":
	default:
		return fundmatch.IngestConfig{}, fmt.Errorf("존재하지 않는 class_policy. 입력 값 : %s", c.Ingest.ClassPolicy)
	}

	return fundmatch.IngestConfig{
		Limit:       c.Ingest.Limit,
		ClassPolicy: policy,
		LockTTL:     c.Ingest.LockTTL,
	}, nil
}

func (c Config) ScraperOptions() []scrape.Option {
	opts := []scrape.Option{}
	if c.Ingest.Url != "" {
		opts = append(opts, scrape.WithCvmUrl(c.Ingest.Url))
	}
	if c.Ingest.Timeout > 0 {
		opts = append(opts, scrape.WithTimeout(c.Ingest.Timeout))
	}
	return opts
}

func (c Config) AuthConfig() handler.AuthConfig {
	return handler.AuthConfig{
		JwtKey:      []byte(c.App.JwtKey),
		TokenTTL:    c.App.TokenTTL,
		ResetTTL:    c.App.ResetTTL,
		MaxFailures: c.Auth.MaxFailures,
		Lockout:     c.Auth.Lockout,
	}
}

/*
memo. 환경 변수 우선. 배포 환경에서 비밀 값은 yaml 대신 환경 변수 또는 .env로 주입
*/
func override(conf *Config) error {

	strs := map[string]*string{
		"FUNDMATCH_LOG":            &conf.Log,
		"FUNDMATCH_JWT_KEY":        &conf.App.JwtKey,
		"FUNDMATCH_CORS":           &conf.App.Cors,
		"FUNDMATCH_DB_DRIVER":      &conf.Db.Driver,
		"FUNDMATCH_DB_PATH":        &conf.Db.Path,
		"FUNDMATCH_DB_USER":        &conf.Db.User,
		"FUNDMATCH_DB_PASSWORD":    &conf.Db.Password,
		"FUNDMATCH_DB_IP":          &conf.Db.IP,
		"FUNDMATCH_DB_PORT":        &conf.Db.Port,
		"FUNDMATCH_DB_SCHEME":      &conf.Db.Scheme,
		"FUNDMATCH_REDIS_IP":       &conf.Redis.IP,
		"FUNDMATCH_REDIS_PORT":     &conf.Redis.Port,
		"FUNDMATCH_REDIS_PASSWORD": &conf.Redis.Password,
		"FUNDMATCH_CVM_URL":        &conf.Ingest.Url,
		"FUNDMATCH_CLASS_POLICY":   &conf.Ingest.ClassPolicy,
		"FUNDMATCH_TELEGRAM_TOKEN": &conf.Telegram.Token,
		"FUNDMATCH_TELEGRAM_CHAT":  &conf.Telegram.ChatId,
	}
	for env, target := range strs {
		if v, ok := os.LookupEnv(env); ok {
			*target = v
		}
	}

	if v, ok := os.LookupEnv("FUNDMATCH_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FUNDMATCH_PORT 값 오류. %w", err)
		}
		conf.App.Port = port
	}
	if v, ok := os.LookupEnv("FUNDMATCH_TELEGRAM_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FUNDMATCH_TELEGRAM_ENABLED 값 오류. %w", err)
		}
		conf.Telegram.Enabled = enabled
	}
	return nil
}

func decode(conf *Config) error {
	key := os.Getenv(secretKeyEnv)
	for _, target := range []*string{
		&conf.App.JwtKey,
		&conf.Db.Password,
		&conf.Redis.Password,
		&conf.Telegram.ChatId,
		&conf.Telegram.Token,
	} {
		if err := util.Decode(target, key); err != nil {
			return err
		}
	}
	return nil
}
