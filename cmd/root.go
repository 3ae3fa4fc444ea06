// Package cmd implements the javadocgen command line interface.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"javadocgen/internal/application/common/logging"
	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/config"
	"javadocgen/internal/version"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "JAVADOCGEN"
	defaultEnvFile = ".env"
)

// rootOptions carries the state shared by all subcommands of one invocation.
type rootOptions struct {
	cfgFile string
	envFile string

	v *viper.Viper
	// flagBindings maps each subcommand's config keys to its flags.
	flagBindings map[*cobra.Command]map[string]*pflag.Flag
}

// Execute runs the root command and exits with a non-zero status on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "javadocgen",
		Short: "Add generated doc comments to undocumented Java declarations",
		Long: `javadocgen parses Java sources with tree-sitter, finds every class, interface,
enum, method and constructor without a doc comment, asks a generation backend
for a comment and inserts it above the declaration. Every other byte of the
file is left as it was.`,
		Version:      version.GetVersion().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.initConfig(cmd)
		},
	}
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: ./configs/config.yaml or ./config.yaml)")
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file loaded before reading the environment (default: .env if present)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (json, text)")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newScanCmd(opts),
		newFormatCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) initConfig(cmd *cobra.Command) error {
	if err := o.loadEnvFile(); err != nil {
		return err
	}

	v := viper.New()
	config.SetDefaults(v)

	if o.cfgFile != "" {
		v.SetConfigFile(o.cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("log.level", root.Lookup("log-level")); err != nil {
		return fmt.Errorf("binding log-level flag: %w", err)
	}
	if err := v.BindPFlag("log.format", root.Lookup("log-format")); err != nil {
		return fmt.Errorf("binding log-format flag: %w", err)
	}
	for key, flag := range o.flagBindings[cmd] {
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding %s flag: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	o.v = v

	return o.setupLogger(cmd)
}

func (o *rootOptions) loadEnvFile() error {
	path := o.envFile
	if path == "" {
		path = defaultEnvFile
	}
	err := godotenv.Load(path)
	if err != nil && o.envFile == "" && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func (o *rootOptions) setupLogger(cmd *cobra.Command) error {
	logger, err := logging.NewApplicationLogger(logging.Config{
		Level:  o.v.GetString("log.level"),
		Format: o.v.GetString("log.format"),
		Output: o.v.GetString("log.output"),
		Writer: logWriter(cmd, o.v.GetString("log.output")),
	})
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	slogger.SetGlobalLogger(logger)
	return nil
}

// logWriter routes stderr logging through the command so tests can capture it.
func logWriter(cmd *cobra.Command, output string) io.Writer {
	if output == "" || output == "stderr" {
		return cmd.ErrOrStderr()
	}
	return nil
}

// bindFlag registers the named flag of cmd as the command-line source of the config key.
func (o *rootOptions) bindFlag(cmd *cobra.Command, key, name string) {
	if o.flagBindings == nil {
		o.flagBindings = make(map[*cobra.Command]map[string]*pflag.Flag)
	}
	if o.flagBindings[cmd] == nil {
		o.flagBindings[cmd] = make(map[string]*pflag.Flag)
	}
	o.flagBindings[cmd][key] = cmd.Flags().Lookup(name)
}

// loadConfig decodes and validates the configuration. Commands that never
// contact a backend pass withBackend=false and get the mock provider.
func (o *rootOptions) loadConfig(withBackend bool) (*config.Config, error) {
	if o.v == nil {
		return nil, errors.New("configuration not initialized")
	}
	if !withBackend {
		o.v.Set("backend.provider", config.ProviderMock)
	}
	return config.Load(o.v)
}
