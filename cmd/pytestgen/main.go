package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/AnthonyAugust/meu-agente-tests/internal/config"
	"github.com/AnthonyAugust/meu-agente-tests/internal/generate"
	"github.com/AnthonyAugust/meu-agente-tests/internal/llm"
	"github.com/AnthonyAugust/meu-agente-tests/internal/logging"
	"github.com/AnthonyAugust/meu-agente-tests/internal/prompt"
	"github.com/AnthonyAugust/meu-agente-tests/internal/pysource"
)

// errUsage is returned after usage has already been printed.
var errUsage = errors.New("usage")

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	logLevel string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pytestgen <file.py>",
		Short: "Generate a pytest file for a Python module",
		Long: `Generate tests/test_<module>.py for the top-level functions of a Python file.

When AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_KEY and AZURE_OPENAI_DEPLOYMENT are
set (in the environment or a .env file) the tests are written by the Azure
OpenAI deployment. Otherwise, or if that call fails, basic tests are
generated from built-in templates.
`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errUsage
			}
			return a.runGenerate(cmd, args[0])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error); overrides "+config.EnvLogLevel)

	root.AddCommand(
		&cobra.Command{
			Use:   "signatures <file.py>",
			Short: "Print the top-level function signatures as YAML",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runSignatures(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:   "prompt <file.py>",
			Short: "Print the prompt that would be sent to the model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runPrompt(cmd, args[0])
			},
		},
		newInitCmd(),
	)
	return root
}

// setup loads configuration and builds the logger.
func (a *app) setup() error {
	cfg, dotenvErr := config.Load()
	a.cfg = cfg
	level := a.cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger, err := logging.New(level)
	if err != nil {
		return err
	}
	a.logger = logger
	if dotenvErr != nil {
		a.logger.Warn("ignoring .env", zap.Error(dotenvErr))
	}
	return nil
}

// ---------------------------------------------------------------------------
// generate (root)
// ---------------------------------------------------------------------------

func (a *app) runGenerate(cmd *cobra.Command, path string) error {
	var client llm.Client
	if a.cfg.Azure.Enabled() {
		client = llm.NewAzureClient(a.cfg.Azure, a.logger)
	}
	p := generate.NewPipeline(a.cfg.Azure, client, a.logger, cmd.OutOrStdout())
	_, err := p.Run(cmd.Context(), path)
	return err
}

// ---------------------------------------------------------------------------
// signatures
// ---------------------------------------------------------------------------

type signaturesOutput struct {
	Module    string               `yaml:"module"`
	Functions []pysource.Signature `yaml:"functions"`
}

func (a *app) runSignatures(cmd *cobra.Command, path string) error {
	req, err := generate.NewPipeline(a.cfg.Azure, nil, a.logger, nil).Load(path)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(signaturesOutput{Module: req.Module, Functions: req.Signatures})
	if err != nil {
		return fmt.Errorf("marshal signatures: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// ---------------------------------------------------------------------------
// prompt
// ---------------------------------------------------------------------------

func (a *app) runPrompt(cmd *cobra.Command, path string) error {
	req, err := generate.NewPipeline(a.cfg.Azure, nil, a.logger, nil).Load(path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), prompt.Build(req.PromptRequest()))
	return err
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "pytestgen: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
