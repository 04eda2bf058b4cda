package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

const (
	DriverMysql  = "mysql"
	DriverSqlite = "sqlite3"

	DefaultSqliteArgs = "file:marketplace.db?_loc=UTC"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv reads DB_DRIVER_TYPE and DB_DRIVER_ARGS.
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driverType := strings.TrimSpace(os.Getenv("DB_DRIVER_TYPE"))
	if driverType == "" {
		driverType = DriverSqlite
	}
	driverArgs := strings.TrimSpace(os.Getenv("DB_DRIVER_ARGS"))

	switch driverType {
	case DriverSqlite:
		if driverArgs == "" {
			driverArgs = DefaultSqliteArgs
		}
	case DriverMysql:
		if driverArgs == "" {
			return nil, errors.New("DB_DRIVER_ARGS is required for mysql")
		}
		args, err := normalizeMysqlArgs(driverArgs)
		if err != nil {
			return nil, err
		}
		driverArgs = args
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER_TYPE %q", driverType)
	}
	return &DatabaseConfig{DriverType: driverType, DriverArgs: driverArgs}, nil
}

// normalizeMysqlArgs turns on clientFoundRows: conditional updates compare RowsAffected with matched rows,
// and mysql otherwise reports only rows whose values changed.
func normalizeMysqlArgs(driverArgs string) (string, error) {
	cfg, err := mysql.ParseDSN(driverArgs)
	if err != nil {
		return "", err
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// PrepareMysqlDatabase creates the database named in driverArgs when it does not exist yet.
func PrepareMysqlDatabase(driverArgs string) error {
	cfg, err := mysql.ParseDSN(driverArgs)
	if err != nil {
		return err
	}
	databaseName := cfg.DBName
	if databaseName == "" {
		return errors.New("database name is missing in " + driverArgs)
	}

	cfg.DBName = ""
	db, err := sql.Open(DriverMysql, cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	if err != nil {
		return err
	}
	logrus.Infof("database %s is ready", databaseName)
	return nil
}
