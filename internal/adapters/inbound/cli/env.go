package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/config"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/gitinfo"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/history"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/imageio"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/logger"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/plugins"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/application"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/lint"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/plugin"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/sequence"
)

// environment is the configuration and adapters one command invocation uses.
type environment struct {
	cfg      domain.ToolConfig
	logger   hclog.Logger
	reader   *imageio.Registry
	launcher *plugins.Launcher
}

// load reads the config file and builds the logger. Flags win over the file.
func (o *globalOptions) load(cmd *cobra.Command) (*environment, error) {
	loader := config.New()
	var (
		cfg domain.ToolConfig
		err error
	)
	if o.configPath != "" {
		if _, statErr := os.Stat(o.configPath); errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", o.configPath)
		}
		cfg, err = loader.LoadFile(o.configPath)
	} else {
		cfg, err = loader.Load(".")
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	log := logger.NewWithOutput("vfxvox", level, cmd.ErrOrStderr())

	return &environment{
		cfg:      cfg,
		logger:   log,
		reader:   imageio.NewRegistry(log),
		launcher: plugins.NewLauncher(cfg.Plugins.Dir, log),
	}, nil
}

// close stops plugin processes started during the command.
func (e *environment) close() { e.launcher.Close() }

// resolver looks validators up in-process first, then as plugin binaries.
func (e *environment) resolver() domain.ValidatorResolver {
	builtin := plugins.NewRegistry()
	plugins.RegisterBuiltins(builtin)
	return plugins.Chain{builtin, e.launcher}
}

func (e *environment) engine() *lint.Engine {
	seq := e.cfg.Sequences
	analyzer := sequence.NewAnalyzer(sequence.Options{
		Reader:          e.reader,
		CheckResolution: seq.ResolutionEnabled(),
		CheckBitDepth:   seq.BitDepthEnabled(),
		Workers:         seq.Workers,
		Detail:          seq.Detail,
		Logger:          e.logger,
	})
	return lint.New(
		lint.WithAnalyzer(analyzer),
		lint.WithDispatcher(plugin.NewDispatcher(e.resolver(), e.cfg.Plugins.Timeout, e.logger)),
		lint.WithLogger(e.logger),
	)
}

func (e *environment) shotLintService(engine *lint.Engine) *application.ShotLintService {
	return application.NewShotLintService(config.NewRulesLoader(), engine, gitinfo.New(), history.New(), e.logger)
}

func (e *environment) sequenceService() *application.SequenceService {
	return application.NewSequenceService(e.reader, gitinfo.New(), history.New(), e.logger)
}
