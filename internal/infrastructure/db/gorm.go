package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Dialector picks the gorm dialector for the configured driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL, "":
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func OpenGorm(driver, dsn string, log *logrus.Logger, gl logger.Interface) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := OpenGormWithDialector(dial, gl)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// sqlite serializes writers anyway; one conn avoids SQLITE_BUSY
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(1)
	}
	log.WithField("driver", dial.Name()).Info("gorm: connected")
	return db, nil
}

// OpenGormWithDialector opens and pings. A nil logger keeps gorm's default.
func OpenGormWithDialector(dial gorm.Dialector, gl logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if gl != nil {
		cfg.Logger = gl
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
