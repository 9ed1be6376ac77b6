// Package database は GORM の接続確立とスキーマ作成を行います。
package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yourusername/user-portal/internal/users"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Options は接続に必要な設定です。
type Options struct {
	Driver string
	URL    string
	Debug  bool // true の場合は全 SQL をログに出す
	Logger *zap.Logger
}

// Open は DB に接続し、存在しないテーブルを作成した *gorm.DB を返します。
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(opts.URL)
	case DriverMySQL:
		dialector = mysql.Open(opts.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(opts.Logger, opts.Debug),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if opts.Driver == DriverMySQL {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		// SQLite は書き込みが単一接続に限られるため接続を1本にする
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate はテーブルが存在しなければ作成します。バージョン管理は行いません。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&users.User{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close は下位の接続を閉じます。
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newGormLogger(logger *zap.Logger, debug bool) gormlogger.Interface {
	if logger == nil {
		return gormlogger.Discard
	}
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
