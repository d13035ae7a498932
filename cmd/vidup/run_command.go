package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidup/internal/blob"
	"vidup/internal/config"
	"vidup/internal/export"
	"vidup/internal/logging"
	"vidup/internal/metrics"
	"vidup/internal/preflight"
	"vidup/internal/session"
	"vidup/internal/ui"
)

type runOptions struct {
	file        string
	interactive bool
	noDownload  bool
	outputDir   string
	metricsFile string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Upload a video, wait for processing and save the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.file = args[0]
			}
			if opts.file == "" && !opts.interactive {
				return errors.New("a video file is required (or pass --interactive)")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runSession(signalCtx, cmd, ctx, cfg, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Read commands (upload, download, reselect, reset, status, quit) from stdin")
	cmd.Flags().BoolVar(&opts.noDownload, "no-download", false, "Do not save the processed video")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Directory for the processed video (defaults to paths.output_dir, then the source directory)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics for this run to the given textfile")
	return cmd
}

func runSession(ctx context.Context, cmd *cobra.Command, cmdCtx *commandContext, cfg *config.Config, opts runOptions) error {
	sessionID := uuid.NewString()
	logger, err := cmdCtx.logger(sessionID)
	if err != nil {
		return err
	}
	logger = logging.NewComponentLogger(logger, "cli")

	if check := preflight.CheckService(ctx, cfg.Service.BaseURL, cfg.Service.APIToken); !check.Passed {
		logging.ErrorWithContext(logger, "processing service unavailable", "preflight_failed",
			logging.String("detail", check.Detail),
			logging.String(logging.FieldErrorHint, "verify service.base_url or VIDUP_BASE_URL"),
		)
		return fmt.Errorf("%s: %s", check.Name, check.Detail)
	}

	outputDir := strings.TrimSpace(opts.outputDir)
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	} else if expanded, err := config.ExpandPath(outputDir); err == nil {
		outputDir = expanded
	}
	saver := &outputSaver{dir: outputDir}

	var input io.Reader
	if opts.interactive {
		input = cmd.InOrStdin()
	}
	term := ui.NewTerminal(cmd.OutOrStdout(), input)
	recorder := metrics.NewRecorder()
	registry := blob.NewRegistry()

	sessionOpts := session.OptionsFromConfig(cfg)
	sessionOpts.Processor = newProcessorClient(cfg, sessionID)
	sessionOpts.View = term
	sessionOpts.Saver = saver
	sessionOpts.Registry = registry
	sessionOpts.Observer = recorder
	sessionOpts.Logger = logger
	ctrl, err := session.New(sessionOpts)
	if err != nil {
		return err
	}

	loopCtx, stop := context.WithCancel(ctx)
	defer func() {
		stop()
		<-ctrl.Done()
		if err := recorder.WriteTextfile(opts.metricsFile); err != nil {
			logger.Warn("metrics export failed", logging.Error(err))
		}
	}()
	go func() {
		if err := ctrl.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("session loop stopped", logging.Error(err))
		}
	}()

	term.OnPick(func(path string) {
		saver.setSource(path)
		_ = ctrl.SelectFile(ctx, path)
	})

	logger.Info("session started",
		logging.String("base_url", cfg.Service.BaseURL),
		logging.Bool("interactive", opts.interactive),
	)

	if opts.interactive {
		return runInteractive(ctx, ctrl, term, saver, opts)
	}
	return runOnce(ctx, ctrl, term, saver, opts)
}

func runOnce(ctx context.Context, ctrl *session.Controller, term *ui.Terminal, saver *outputSaver, opts runOptions) error {
	saver.setSource(opts.file)
	if err := ctrl.SelectFile(ctx, opts.file); err != nil {
		return err
	}
	if err := ctrl.Upload(ctx); err != nil {
		return err
	}
	snap, err := ctrl.Wait(ctx)
	if err != nil {
		return err
	}
	if snap.State == session.StateCompleted && !opts.noDownload {
		if err := ctrl.Download(ctx); err != nil {
			return err
		}
	}
	term.Println(ui.Summary(snap))
	if snap.State == session.StateFailed {
		return fmt.Errorf("session failed: %s", snap.UploadStatus)
	}
	return nil
}

const interactiveHelp = "commands: upload, download, reselect, reset, status, quit"

func runInteractive(ctx context.Context, ctrl *session.Controller, term *ui.Terminal, saver *outputSaver, opts runOptions) error {
	if opts.file != "" {
		saver.setSource(opts.file)
		_ = ctrl.SelectFile(ctx, opts.file)
	} else {
		_ = ctrl.Reselect(ctx)
	}
	term.Println(interactiveHelp)

	for {
		line, err := term.Prompt("Command")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "upload", "u":
			if err := ctrl.Upload(ctx); err != nil {
				continue
			}
			snap, err := ctrl.Wait(ctx)
			if err != nil {
				return err
			}
			term.Println(ui.Summary(snap))
		case "download", "d":
			_ = ctrl.Download(ctx)
		case "reselect", "r":
			_ = ctrl.Reselect(ctx)
		case "reset":
			_ = ctrl.Reset(ctx)
		case "select", "s":
			if len(fields) < 2 {
				term.Println("usage: select <file>")
				continue
			}
			path := strings.Join(fields[1:], " ")
			saver.setSource(path)
			_ = ctrl.SelectFile(ctx, path)
		case "status":
			snap, err := ctrl.Snapshot(ctx)
			if err != nil {
				return err
			}
			term.Println(ui.Summary(snap))
		case "quit", "q", "exit":
			return nil
		default:
			term.Println(interactiveHelp)
		}
	}
}

// outputSaver writes into the configured directory, or next to the source
// file when none is configured.
type outputSaver struct {
	dir string

	mu     sync.Mutex
	source string
}

func (s *outputSaver) setSource(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = path
}

func (s *outputSaver) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	dir := s.dir
	if dir == "" {
		s.mu.Lock()
		source := s.source
		s.mu.Unlock()
		dir = filepath.Dir(source)
	}
	return export.NewDir(dir).Save(ctx, name, r)
}
