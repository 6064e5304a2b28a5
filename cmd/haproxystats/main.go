package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"haproxy-telegraf-plugin/internal/config"
	"haproxy-telegraf-plugin/internal/haproxy"
	"haproxy-telegraf-plugin/internal/lineprotocol"
	"haproxy-telegraf-plugin/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg        = config.Default()
	configPath string
	timeout    time.Duration
	raw        bool
	logger     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:               "haproxystats",
	Short:             "Query the HAProxy stats socket and output InfluxDB line protocol",
	PersistentPreRunE: setup,
	RunE:              runQuery,
	SilenceUsage:      true,
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the HAProxy process environment",
	Args:  cobra.NoArgs,
	RunE:  runEnv,
}

var execCmd = &cobra.Command{
	Use:   "exec COMMAND",
	Short: "Send a single command and print the raw response",
	Args:  cobra.ExactArgs(1),
	RunE:  runExec,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.StringVarP(&cfg.Socket, "socket", "S", cfg.Socket, "Stats socket unix path")
	flags.StringVarP(&cfg.Address, "address", "a", "", "Stats socket TCP address (host:port)")
	flags.StringVarP(&cfg.Server, "server", "s", cfg.Server, "Server tag for line protocol output")
	flags.DurationVarP(&timeout, "timeout", "t", cfg.Timeout(), "Per-command timeout")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	rootCmd.Flags().StringVarP(&cfg.Format, "format", "f", cfg.Format, "Wire format to request: csv or json")
	rootCmd.Flags().BoolVarP(&raw, "raw", "r", false, "Print the raw stat response instead of line protocol")

	rootCmd.AddCommand(envCmd, execCmd)
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup merges the config file under explicitly set flags and validates
// the result.
func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		fromFile, err := config.Load(configPath, config.Default())
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(10)
		}
		applyFlags(cmd, fromFile)
		cfg = *fromFile
	}
	if cmd.Flags().Changed("address") && !cmd.Flags().Changed("socket") {
		cfg.Socket = ""
	}
	if cmd.Flags().Changed("timeout") || configPath == "" {
		cfg.TimeoutSeconds = int((timeout + time.Second - 1) / time.Second)
	}

	logger = logging.New("haproxystats", cfg.LogLevel, os.Stderr)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(10)
	}
	return nil
}

// applyFlags copies flags given on the command line over file values.
func applyFlags(cmd *cobra.Command, dst *config.Config) {
	changed := cmd.Flags().Changed
	if changed("socket") {
		dst.Socket = cfg.Socket
	}
	if changed("address") {
		dst.Address = cfg.Address
	}
	if changed("server") {
		dst.Server = cfg.Server
	}
	if changed("format") {
		dst.Format = cfg.Format
	}
	if changed("log-level") {
		dst.LogLevel = cfg.LogLevel
	}
}

func newClient() *haproxy.Client {
	var client *haproxy.Client
	if cfg.Address != "" {
		client = haproxy.NewTCPClient(cfg.Address, cfg.Timeout())
	} else {
		client = haproxy.NewUnixClient(cfg.Socket, cfg.Timeout())
	}
	client.Logger = logger
	return client
}

func runQuery(cmd *cobra.Command, args []string) error {
	client := newClient()
	ctx := cmd.Context()

	// Raw mode — print the stat response as received and exit
	if raw {
		statCmd := haproxy.ShowStat()
		if cfg.Format == config.FormatJSON {
			statCmd = haproxy.ShowStatJSON()
		}
		return sendRaw(ctx, client, statCmd, cmd.OutOrStdout())
	}

	var (
		info  *haproxy.Info
		stats []haproxy.Statistic
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if cfg.Format == config.FormatJSON {
			info, err = client.ShowInfoJSON(gctx)
		} else {
			info, err = client.ShowInfo(gctx)
		}
		return err
	})
	g.Go(func() error {
		var err error
		if cfg.Format == config.FormatJSON {
			stats, err = client.ShowStatJSON(gctx)
		} else {
			stats, err = client.ShowStat(gctx)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("query failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	output, err := lineprotocol.FormatStats(stats, cfg.Server)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), lineprotocol.FormatInfo(info, cfg.Server))
	if output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}

	logger.Debug().Int("records", len(stats)).Msg("query complete")
	return nil
}

func runEnv(cmd *cobra.Command, args []string) error {
	vars, err := newClient().ShowEnv(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, vars[k])
	}
	return nil
}

func runExec(cmd *cobra.Command, args []string) error {
	command, err := haproxy.NewCommand(args[0])
	if err != nil {
		return fmt.Errorf("%q: %w (escape it as \\;)", args[0], err)
	}
	return sendRaw(cmd.Context(), newClient(), command, cmd.OutOrStdout())
}

func sendRaw(ctx context.Context, client *haproxy.Client, command haproxy.Command, out io.Writer) error {
	data, err := client.Send(ctx, command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	_, err = out.Write(data)
	return err
}
