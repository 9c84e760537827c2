package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/backyard-e2e/pkg/config"
	"github.com/devicelab-dev/backyard-e2e/pkg/driver/appium"
	"github.com/devicelab-dev/backyard-e2e/pkg/logger"
	"github.com/devicelab-dev/backyard-e2e/pkg/pages"
	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

// openBackend connects to the automation backend. Tests replace it.
var openBackend = func(ctx context.Context, cfg *config.Config) (ui.Backend, func(context.Context) error, error) {
	drv, err := appium.NewDriver(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return drv, drv.Close, nil
}

type session struct {
	cfg     *config.Config
	backend ui.Backend
	ui      *ui.Dispatcher
	close   func(context.Context) error
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}
	if url := c.String("appium-url"); url != "" {
		cfg.Server = url
	}
	return cfg, nil
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	backend, closeFn, err := openBackend(c.Context, cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:     cfg,
		backend: backend,
		ui:      ui.NewDispatcher(backend, cfg.WaitPolicy()),
		close:   closeFn,
	}, nil
}

func (s *session) pages() *pages.Base {
	return pages.NewBase(s.ui, s.cfg.BundleID)
}

// Close ends the session; failures are logged only.
func (s *session) Close(ctx context.Context) {
	if s.close == nil {
		return
	}
	if err := s.close(ctx); err != nil {
		logger.Warn("close session: %v", err)
	}
}

// withSession opens a session, runs fn and always closes the session.
func withSession(c *cli.Context, fn func(*session) error) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close(context.WithoutCancel(c.Context))
	return fn(s)
}
