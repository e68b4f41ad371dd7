package config

import (
	"go.uber.org/zap"
)

var Logger *zap.Logger

// InitLogger builds the process logger; production output is JSON.
func InitLogger(env string) error {
	var err error
	if env == "production" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment() // برای توسعه
	}
	if err != nil {
		return err
	}

	Logger.Info("Zap logger initialized", zap.String("env", env))
	return nil
}
