package cmd

import (
	"os"

	"trading-agent/config"
	"trading-agent/pkg/console"
	"trading-agent/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
)

type AppDependency struct {
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	printer   *console.Printer
}

func NewAppDependency(configPath string) (*AppDependency, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		printer:   console.New(os.Stdout),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	_ = d.log.Sync()
	return nil
}
