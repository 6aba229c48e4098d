package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger. Production gets JSON output,
// anything else gets the human-friendly development console.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
