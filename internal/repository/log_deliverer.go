package repository

import (
	"context"

	applogger "MarketPulse/pkg/logger"
)

// LogDeliverer writes composed messages to the log instead of a chat. Used
// when Telegram is disabled, typically in local runs and tests.
type LogDeliverer struct {
	log *applogger.Logger
}

func NewLogDeliverer(log *applogger.Logger) *LogDeliverer {
	return &LogDeliverer{log: log}
}

func (d *LogDeliverer) Deliver(_ context.Context, text string) error {
	d.log.Info("message (delivery disabled)", applogger.String("text", text))
	return nil
}
