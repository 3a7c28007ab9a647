package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/jknoll/agentic-orchestration/internal/agent"
	"github.com/jknoll/agentic-orchestration/internal/infra"
	"github.com/jknoll/agentic-orchestration/internal/jobs"
	"github.com/jknoll/agentic-orchestration/internal/pipeline"
	"github.com/jknoll/agentic-orchestration/internal/storage"
)

const maxDirName = 80

type generateFlags struct {
	output      string
	veo3        bool
	veo3Quality bool
	mode        string
	force       bool
}

func newGenerateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate <product-url>",
		Short: "Generate a video ad for one product URL",
		Long: `Resolve product metadata, write a video prompt and render it with every
configured provider. Results land in <output>/<slugged-url>/ next to a README.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "base output directory (default OUTPUT_DIR)")
	cmd.Flags().BoolVar(&flags.veo3, "veo3", false, "also render with Veo 3 via Kie.ai")
	cmd.Flags().BoolVar(&flags.veo3Quality, "veo3-quality", false, "use the Veo 3 quality model instead of fast")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "comma separated video modes: standard, voiceover, presenter, multishot")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "regenerate even if the output already exists")
	return cmd
}

func runGenerate(cmd *cobra.Command, productURL string, flags generateFlags) error {
	productURL = strings.TrimSpace(productURL)
	dirName, err := outputName(productURL)
	if err != nil {
		return err
	}

	// Flags must be applied before validation so --veo3 alone is enough.
	if flags.veo3 {
		os.Setenv("ENABLE_VEO3", "true")
	}
	if flags.veo3Quality {
		os.Setenv("VEO3_QUALITY", "true")
	}
	if flags.mode != "" {
		os.Setenv("VIDEO_MODE", flags.mode)
	}
	if flags.output != "" {
		os.Setenv("OUTPUT_DIR", flags.output)
	}
	os.Setenv("APP_PROFILE", infra.ProfileFull)

	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(cfg.AppEnv)
	if _, err := agent.ParseMode(cfg.VideoMode); err != nil {
		return err
	}

	files, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		return err
	}
	readme := filepath.Join(files.BasePath(), dirName, pipeline.ReadmeFile)
	if _, err := os.Stat(readme); err == nil && !flags.force {
		fmt.Fprintf(cmd.OutOrStdout(), "Output already exists at %s (use --force to regenerate)\n", filepath.Dir(readme))
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := &consoleStore{
		Store: jobs.NewMemoryStore(jobs.WithIDGenerator(func() string { return dirName })),
		out:   cmd.OutOrStdout(),
	}
	runner, err := pipeline.NewRunner(pipeline.Options{
		Store:    store,
		Files:    files,
		NewAgent: pipeline.NewAgentFactory(cfg, infra.Component(&logger, "agent")),
		Logger:   infra.Component(&logger, "pipeline"),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generating ad for %s\n", productURL)
	fmt.Fprintf(out, "Mode: %s\n\n", cfg.VideoMode)

	started := time.Now()
	jobID := store.Create(productURL)
	result, err := runner.Run(ctx, jobID, productURL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("generation cancelled")
		}
		return err
	}

	fmt.Fprintf(out, "\nDone in %s\n", time.Since(started).Round(time.Second))
	fmt.Fprintf(out, "Product: %s\n", result.Product.Title)
	for _, v := range result.Outcome.Results {
		fmt.Fprintf(out, "  %s: %s\n", v.Provider, v.LocalPath)
	}
	for _, w := range result.Outcome.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	fmt.Fprintf(out, "Summary: %s\n", readme)
	return nil
}

// outputName derives a stable directory name from the product URL's host and path.
func outputName(productURL string) (string, error) {
	u, err := url.Parse(productURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid product URL %q", productURL)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	name := slug.Make(host + " " + strings.ReplaceAll(u.Path, "/", " "))
	if len(name) > maxDirName {
		name = strings.TrimRight(name[:maxDirName], "-")
	}
	if name == "" {
		return "", fmt.Errorf("invalid product URL %q", productURL)
	}
	return name, nil
}

// consoleStore echoes job log lines to the terminal as they are recorded.
type consoleStore struct {
	jobs.Store
	out io.Writer
}

func (s *consoleStore) AddLog(jobID, source, message string) {
	s.Store.AddLog(jobID, source, message)
	fmt.Fprintf(s.out, "[%s] %s\n", source, message)
}
