package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Storage struct {
	db  *gorm.DB
	rds *redis.Client
	lg  zerolog.Logger
}

func NewStorage(dc *DbConfig, rc *RedisConfig) (*Storage, error) {

	dialector, err := dc.dialector()
	if err != nil {
		return nil, err
	}

	rds := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", rc.ip, rc.port),
		Password: rc.password,
		DB:       rc.db, // memo. DB는 우선 0번 하나만 사용
	})

	return newStorage(dialector, rds, &gorm.Config{})
}

// memo. gorm.Open에 *gorm.Config를 여러 개 넘기면 마지막 것이 통째로 덮어씀. 하나로 받아서 기본값만 채움
func newStorage(dialector gorm.Dialector, rds *redis.Client, conf *gorm.Config) (*Storage, error) {

	if conf.Logger == nil {
		// Use a compatible writer for GORM's logger
		conf.Logger = logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second, // Slow SQL threshold
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
	}
	conf.TranslateError = true

	db, err := gorm.Open(dialector, conf)
	if err != nil {
		return nil, err
	}

	stg := &Storage{
		db:  db,
		rds: rds,
		lg:  zerolog.New(os.Stdout).With().Str("Module", "Storage").Timestamp().Logger(),
	}
	if err := stg.initTables(); err != nil {
		return nil, err
	}
	return stg, nil
}

func (s Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := s.rds.Close(); err != nil {
		s.lg.Warn().Err(err).Msg("Failed to close redis client")
	}
	return sqlDB.Close()
}

type DbConfig struct {
	driver   string
	user     string
	password string
	ip       string
	port     string
	scheme   string
	path     string
}

func NewMysqlConfig(user string, password string, ip string, port string, scheme string) *DbConfig {
	return &DbConfig{
		driver:   "mysql",
		user:     user,
		password: password,
		ip:       ip,
		port:     port,
		scheme:   scheme,
	}
}

// 로컬 실행용
func NewSqliteConfig(path string) *DbConfig {
	return &DbConfig{
		driver: "sqlite",
		path:   path,
	}
}

func (c DbConfig) dialector() (gorm.Dialector, error) {
	switch c.driver {
	case "mysql":
		return mysql.Open(stgDsn(&c)), nil
	case "sqlite":
		return sqlite.Open(fmt.Sprintf("file:%s?_foreign_keys=1", c.path)), nil
	}
	return nil, fmt.Errorf("지원하지 않는 db driver: %q", c.driver)
}

func stgDsn(conf *DbConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", conf.user, conf.password, conf.ip, conf.port, conf.scheme)
}

type RedisConfig struct {
	password string
	ip       string
	port     string
	db       int
}

func NewRedisConfig(password string, ip string, port string, db int) *RedisConfig {
	return &RedisConfig{
		password: password,
		ip:       ip,
		port:     port,
		db:       db,
	}
}
