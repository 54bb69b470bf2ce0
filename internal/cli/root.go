package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ulpi-io/agent-library/internal/config"
	"github.com/ulpi-io/agent-library/internal/exitcodes"
	"github.com/ulpi-io/agent-library/internal/registry"
	"github.com/ulpi-io/agent-library/internal/ui"
)

// App is the dependency container for all CLI commands.
type App struct {
	rootCmd *cobra.Command
	version string
	commit  string
	date    string

	v          *viper.Viper
	configFile string
	settings   config.Settings

	output *ui.Output
	logOut io.Writer
	logger *log.Logger

	// Overridable in tests.
	homeDir     func() (string, error)
	interactive func() bool
}

// NewApp creates the root command and registers all subcommands.
func NewApp(version, commit, date string) *App {
	app := &App{
		version:     version,
		commit:      commit,
		date:        date,
		v:           config.NewViper(),
		output:      ui.NewOutput(),
		logOut:      os.Stderr,
		logger:      log.New(io.Discard),
		homeDir:     os.UserHomeDir,
		interactive: ui.IsInteractive,
	}

	var opts installOptions
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Install AI agent configurations into your project",
		Long: "Installs framework-specific agent prompts, rules, skills and MCP server\n" +
			"configuration for ULPI, Cursor, Amazon Q, Claude Code and Codex.\n\n" +
			"Run without --framework and --editors for an interactive setup.",
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadSettings()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runInstall(cmd.Context(), opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.configFile, "config", "", "settings file (default "+filepath.Join(config.SettingsDir(), "config.yaml")+")")
	pf.String(config.KeyManifestURL, registry.DefaultManifestURL, "manifest (map.json) URL")
	pf.String(config.KeyRawBaseURL, registry.DefaultRawBaseURL, "base URL that manifest source paths are joined to")
	pf.String(config.KeyAPIBaseURL, registry.DefaultAPIBaseURL, "contents API base URL used for skill folders")
	pf.String(config.KeyToken, "", "GitHub token for the contents API (AGENT_LIBRARY_TOKEN)")
	pf.Duration(config.KeyTimeout, app.v.GetDuration(config.KeyTimeout), "per-request HTTP timeout")
	pf.Int(config.KeyRetries, app.v.GetInt(config.KeyRetries), "extra attempts after a network error or 5xx response")
	pf.Int(config.KeyConcurrency, app.v.GetInt(config.KeyConcurrency), "parallel file downloads")
	pf.Bool(config.KeyDebug, false, "enable debug logging")
	pf.Bool(config.KeyNoColor, false, "disable colored output")
	bindFlags(app.v, pf)

	opts.register(root.Flags())

	root.AddCommand(
		app.newListCmd(),
		app.newVerifyCmd(),
		app.newDoctorCmd(),
		app.newVersionCmd(),
	)

	app.rootCmd = root
	return app
}

// bindFlags makes every flag in fs the highest-precedence source for the
// viper key of the same name.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(f.Name, f)
	})
}

// ExecuteContext runs the root command with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.rootCmd.ExecuteContext(ctx)
}

func (a *App) loadSettings() error {
	s, err := config.LoadSettings(a.v, a.configFile)
	if err != nil {
		return &ExitError{Code: exitcodes.Failure, Message: err.Error()}
	}
	a.settings = s
	a.output.SetNoColor(s.NoColor)
	a.logger = ui.NewLogger(a.logOut, s.Debug)
	return nil
}

// newRegistryClient creates a registry client with the current settings.
func (a *App) newRegistryClient() *registry.Client {
	opts := append(a.settings.ClientOptions(), registry.WithLogger(a.logger))
	return registry.NewClient(opts...)
}

// fetchManifest loads the manifest behind a spinner.
func (a *App) fetchManifest(ctx context.Context, client *registry.Client) (*registry.Manifest, error) {
	var m *registry.Manifest
	err := ui.WithSpinner("Fetching agent library...", func() error {
		var fetchErr error
		m, fetchErr = client.FetchManifest(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, &ExitError{Code: exitcodes.Failure, Message: "Failed to load the agent library: " + err.Error()}
	}
	return m, nil
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			a.output.Info("%s %s (commit: %s, built: %s)", config.AppName, a.version, a.commit, a.date)
		},
	}
}

// resolveTarget returns the absolute form of dir, defaulting to the working directory.
func resolveTarget(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &ExitError{Code: exitcodes.Failure, Message: "invalid target directory: " + err.Error()}
	}
	return abs, nil
}

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
