package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/halcyonops/spoadmin/internal/config"
	"github.com/halcyonops/spoadmin/internal/connectors/microsoft"
	"github.com/halcyonops/spoadmin/internal/connectors/microsoft/entra"
	"github.com/halcyonops/spoadmin/internal/connectors/microsoft/sharepoint"
	"github.com/halcyonops/spoadmin/internal/core/domain"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
	"github.com/halcyonops/spoadmin/internal/core/services"
	"github.com/halcyonops/spoadmin/internal/logger"
	"github.com/halcyonops/spoadmin/internal/sitelist"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Persistent flags.
	configPath  string
	verbose     bool
	logFilePath string
	tenantHost  string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "spoadmin",
	Short: "SharePoint Online tenant administration",
	Long: `spoadmin automates site-collection administration for a SharePoint
Online tenant: granting and revoking site collection administrators,
reporting administrator inventories with group expansion, and evaluating
sites for Microsoft 365 group connection.

Authentication uses an app registration with app-only permissions; the
client secret is read from the config file, the SPOADMIN_CLIENT_SECRET
environment variable, or an interactive prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under a cancellable context,
// checked between sites during a batch.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.spoadmin/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "also write structured log entries to this file")
	rootCmd.PersistentFlags().StringVar(&tenantHost, "tenant", "", "tenant host label (overrides config)")
}

// runtime is everything a command needs for one run: validated config, a
// run-scoped logger, the connected adapters, and the retrying invoker.
type runtime struct {
	cfg     config.Config
	log     zerolog.Logger
	release func()
	dir     driven.SiteDirectory
	groups  driven.GroupDirectory
	inv     *microsoft.Invoker
}

// Adapter factories, replaced in CLI tests.
var (
	newSiteDirectory = func(cfg config.Config) driven.SiteDirectory {
		creds := appCredentials(cfg)
		spCfg := sharepoint.Config{
			TenantHost:   cfg.Tenant.Host,
			AdminBaseURL: cfg.Tenant.AdminURL,
			Tokens:       creds.SharePointTokenSource(cfg.Tenant.Host),
		}
		if cfg.Throttle.RequestsPerSecond > 0 {
			spCfg.RateLimit = &microsoft.RateLimitConfig{
				RequestsPerSecond: cfg.Throttle.RequestsPerSecond,
				BurstSize:         cfg.Throttle.Burst,
			}
		}
		return sharepoint.New(spCfg)
	}
	newGroupDirectory = func(cfg config.Config) driven.GroupDirectory {
		return entra.New(entra.Config{Tokens: appCredentials(cfg).GraphTokenSource()})
	}
)

func appCredentials(cfg config.Config) microsoft.AppCredentials {
	return microsoft.AppCredentials{
		TenantID:     cfg.Auth.TenantID,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
	}
}

// bootstrap loads and validates configuration, builds the run logger, and
// connects the adapters. Configuration failures are fatal before any site
// is touched.
func bootstrap() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if tenantHost != "" {
		cfg.Tenant.Host = tenantHost
	}
	if cfg.Auth.ClientSecret == "" {
		if secret, ok := promptSecret(); ok {
			cfg.Auth.ClientSecret = secret
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, release, err := logger.New(logger.Options{
		Verbose:  verbose,
		FilePath: logFilePath,
		RunID:    uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:     cfg,
		log:     log,
		release: release,
		dir:     newSiteDirectory(cfg),
		groups:  newGroupDirectory(cfg),
		inv: microsoft.NewInvoker(
			cfg.Throttle.MaxAttempts,
			time.Duration(cfg.Throttle.DefaultBackoffSeconds)*time.Second,
			log,
		),
	}, nil
}

// promptSecret asks for the client secret when stdin is a terminal.
func promptSecret() (string, bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", false
	}
	fmt.Fprint(os.Stderr, "Client secret: ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil || len(secret) == 0 {
		return "", false
	}
	return string(secret), true
}

// buildIterator resolves the working set from the shared --sites/--all
// flags of a command.
func buildIterator(cmd *cobra.Command, rt *runtime, filter sitelist.Filter, sitesFile string, all bool) (driven.SiteIterator, error) {
	var (
		it  *sitelist.Iter
		err error
	)
	switch {
	case sitesFile != "":
		f, openErr := os.Open(sitesFile)
		if openErr != nil {
			return nil, fmt.Errorf("open site list: %w", openErr)
		}
		defer f.Close()
		it, err = sitelist.FromCSV(f, filter)
	case all:
		it, err = sitelist.FromDirectory(cmd.Context(), rt.dir, filter)
	default:
		return nil, fmt.Errorf("specify --sites <file> or --all: %w", domain.ErrConfigurationInvalid)
	}
	if err != nil {
		return nil, err
	}
	if it.Len() == 0 && len(it.Skips()) == 0 {
		return nil, domain.ErrNoSites
	}
	return it, nil
}

// Summary styles.
var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleSkip    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// printSummary renders the run summary block after a batch completes.
func printSummary(cmd *cobra.Command, report *services.RunReport) {
	s := report.Summary
	cmd.Println()
	cmd.Printf("Processed %d sites\n", s.Total())
	cmd.Println(styleSuccess.Render(fmt.Sprintf("  succeeded  %d", s.Succeeded)))
	cmd.Println(styleSkip.Render(fmt.Sprintf("  skipped    %d", s.Skipped)))
	cmd.Println(styleFail.Render(fmt.Sprintf("  failed     %d", s.Failed)))

	if s.Failed == 0 {
		return
	}
	cmd.Println()
	for _, r := range report.Results {
		if r.Outcome != domain.OutcomeFailed {
			continue
		}
		cmd.Println(styleFail.Render(fmt.Sprintf("  %s: %s", r.SiteURL, firstLine(r.Detail))))
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
