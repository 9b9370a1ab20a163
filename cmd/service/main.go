package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/static-website/internal/config"
	"gitlab.com/dirk.krummacker/static-website/internal/logging"
	"gitlab.com/dirk.krummacker/static-website/internal/service"
)

// Usage example on the command line:
// > PORT=8080 DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	service.SetLogger(logger)

	sqlDB, err := service.CreateDatabase(cfg)
	if err != nil {
		logger.Fatal("could not create database", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := service.SetupDatabaseWrapper(sqlDB); err != nil {
		logger.Fatal("could not prepare statements", zap.Error(err))
	}
	router := service.SetupHttpRouter(cfg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("contact service listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
