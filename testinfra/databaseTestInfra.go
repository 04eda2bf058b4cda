package testinfra

import (
	"context"
	"log"
	"os"
	"strings"

	"marketplace/persistence"

	"github.com/google/uuid"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager
}

// StartTestDatabase uses mysql when TEST_MYSQL_SERVICE is set (e.g. root:root@(127.0.0.1:3306)),
// otherwise a private in-memory sqlite database.
// The new data source also becomes persistence.ActiveDataSourceManager.
func StartTestDatabase(baseName string) *TestDatabase {
	if os.Getenv("TEST_MYSQL_SERVICE") != "" {
		return StartMysqlTestDatabase(baseName)
	}
	return StartSqliteTestDatabase(baseName)
}

func StopTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if testDatabase.DS.DatabaseConfig.DriverType == persistence.DriverMysql {
		StopMysqlTestDatabase(testDatabase)
		return
	}
	testDatabase.DS.Stop()
}

func StartSqliteTestDatabase(baseName string) *TestDatabase {
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	dbConfig := &persistence.DatabaseConfig{
		DriverType: persistence.DriverSqlite,
		DriverArgs: "file:" + databaseName + "?mode=memory&cache=shared&_loc=UTC",
	}
	return start(databaseName, dbConfig)
}

func StartMysqlTestDatabase(baseName string) *TestDatabase {
	mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE")
	if mysqlSvc == "" {
		mysqlSvc = "root:root@(127.0.0.1:3306)"
	}
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	dbConfig := &persistence.DatabaseConfig{
		DriverType: persistence.DriverMysql,
		DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=UTC&timeout=5s&clientFoundRows=true",
	}

	// create database (no conflict)
	if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
		log.Fatalf("failed to prepare database %v\n", err)
	}
	return start(databaseName, dbConfig)
}

func start(databaseName string, dbConfig *persistence.DatabaseConfig) *TestDatabase {
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		log.Fatalf("database conneciton failed %v\n", err)
	}
	persistence.ActiveDataSourceManager = ds
	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

func StopMysqlTestDatabase(testDatabase *TestDatabase) {
	if testDatabase != nil && testDatabase.DS != nil {
		if db := testDatabase.DS.GormDB(context.Background()); db != nil {
			if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
				log.Println("failed to drop test database: " + testDatabase.TestDatabaseName)
			} else {
				log.Println("test database " + testDatabase.TestDatabaseName + " dropped")
			}
		}

		// close connection
		testDatabase.DS.Stop()
	}
}
