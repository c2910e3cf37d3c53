package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/config"
	"github.com/ankit-chaubey/media-metadata-surgery/core/image"
	"github.com/ankit-chaubey/media-metadata-surgery/core/logging"
	"github.com/ankit-chaubey/media-metadata-surgery/core/video"
)

type globalFlags struct {
	config   string
	json     bool
	verbose  bool
	logLevel string
}

type commandContext struct {
	flags *globalFlags
	cmd   *cobra.Command

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	logger  *slog.Logger
	printer *core.Printer
	engine  *video.Engine
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// bind captures the running command's output streams.
func (c *commandContext) bind(cmd *cobra.Command) {
	c.cmd = cmd
	c.printer = core.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.flags.json, c.flags.verbose)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if c.flags.logLevel != "" {
			cfg.Logging.Level = c.flags.logLevel
		} else if c.flags.verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			Writer:      c.cmd.ErrOrStderr(),
			Development: c.flags.verbose,
		})
		if err != nil {
			c.configErr = fmt.Errorf("configure logging: %w", err)
			return
		}
		c.config, c.configPath, c.logger = cfg, path, logger
	})
	return c.config, c.configErr
}

func (c *commandContext) scrubber() *image.Scrubber {
	return image.New(image.Options{
		Quality:            c.config.Image.Quality,
		MinTransplantBytes: c.config.Image.MinTransplantBytes,
		Logger:             c.logger,
	})
}

func (c *commandContext) videoEngine() *video.Engine {
	if c.engine == nil {
		c.engine = video.Shared(video.Options{
			FFmpegBinary:  c.config.Video.FFmpegBinary,
			FFprobeBinary: c.config.Video.FFprobeBinary,
			WorkspaceDir:  c.config.Video.WorkspaceDir,
			ProbeTimeout:  c.config.ProbeTimeout(),
			StripTimeout:  c.config.StripTimeout(),
			Logger:        c.logger,
		})
	}
	return c.engine
}

func (c *commandContext) close() error {
	if c.engine == nil {
		return nil
	}
	return c.engine.Close()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
