package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

type LogConf struct {
	Level string
}

type Config struct {
	Host    string
	Port    int
	User    string
	PW      string
	DBName  string
	LogConf LogConf
}

// Datastore wraps the shared gorm handle. Repositories embed it and reach
// the database through DBWithContext so transactions started by ExecTx are
// picked up transparently.
type Datastore struct {
	db *gorm.DB
}

var dataStore *Datastore

func InitPostgres(ctx context.Context, conf *Config) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		conf.Host, conf.User, conf.PW, conf.DBName, conf.Port)

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(gormLogLevel(conf.LogConf.Level)),
	})
	if err != nil {
		logger.Fatalf(ctx, "connect postgres fail err: %+v", err)
	}

	if err := gdb.Use(otelgorm.NewPlugin(otelgorm.WithDBName(conf.DBName))); err != nil {
		logger.Fatalf(ctx, "install gorm otel plugin fail err: %+v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Fatalf(ctx, "get sql db fail err: %+v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	dataStore = &Datastore{db: gdb}
}

func ClosePostgres(ctx context.Context) {
	if dataStore == nil {
		return
	}
	sqlDB, err := dataStore.db.DB()
	if err != nil {
		logger.Errorf(ctx, "close postgres fail err: %+v", err)
		return
	}
	_ = sqlDB.Close()
}

func DB() *Datastore {
	return dataStore
}

func gormLogLevel(level string) glogger.LogLevel {
	if level == "debug" {
		return glogger.Info
	}
	return glogger.Warn
}

func (d *Datastore) DBIns() *gorm.DB {
	return d.db
}

type txKey struct{}

func (d *Datastore) DBWithContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// ExecTx runs fn inside one transaction. The transaction handle rides the
// context so nested repository calls join it via DBWithContext.
func (d *Datastore) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
