package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/echobridge/relay-backend/config"
	"github.com/echobridge/relay-backend/pkg/logger"
)

// GetConnection opens the gorm connection described by the database
// configuration and applies the pool settings.
func GetConnection(databaseConfig *config.DatabaseConfig) *gorm.DB {
	log, _ := logger.GetZapLogger(context.Background())

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
		databaseConfig.Host,
		databaseConfig.Username,
		databaseConfig.Password,
		databaseConfig.Name,
		databaseConfig.Port,
		databaseConfig.TimeZone,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		QueryFields: true, // QueryFields mode will select by all fields' name for current model
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		log.Fatal("cannot open database connection", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("cannot access underlying sql.DB", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(databaseConfig.Pool.IdleConnections)
	sqlDB.SetMaxOpenConns(databaseConfig.Pool.MaxConnections)
	if databaseConfig.Pool.ConnLifeTime > 0 {
		sqlDB.SetConnMaxLifetime(databaseConfig.Pool.ConnLifeTime)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db
}

// Close closes the connection held by the gorm instance.
func Close(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}
}
