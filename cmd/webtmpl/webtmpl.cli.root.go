package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/itsatony/go-webtmpl"
)

// cli holds the state shared by the commands of one run.
type cli struct {
	v       *viper.Viper
	cfgFile string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// newRootCmd builds a fresh command tree. Nothing is global so every run,
// including every test, starts from a clean configuration.
func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           CLIName,
		Short:         HelpRootShort,
		Long:          HelpRootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initConfig()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&c.cfgFile, FlagConfig, "", "config file (default .webtmpl.yml, or WEBTMPL_CONFIG_FILE)")
	root.PersistentFlags().StringP(FlagFolder, FlagFolderShort, webtmpl.DefaultFolder, "template root folder")
	root.PersistentFlags().StringP(FlagMode, FlagModeShort, webtmpl.DefaultMode.String(), "output mode (html, raw)")
	root.PersistentFlags().String(FlagExtension, webtmpl.DefaultExtension, "template file extension")
	root.PersistentFlags().Int(FlagMaxPasses, webtmpl.DefaultMaxInclusionPasses, "inclusion pass bound, 0 for none")
	root.PersistentFlags().Bool(FlagDebug, false, "debug mode, sets {{ debug }} to 1")

	c.bind(root.PersistentFlags(), map[string]string{
		KeyTemplatesFolder:    FlagFolder,
		KeyTemplatesMode:      FlagMode,
		KeyTemplatesExtension: FlagExtension,
		KeyTemplatesMaxPasses: FlagMaxPasses,
		KeyLogDebug:           FlagDebug,
	})

	root.AddCommand(
		c.newRenderCmd(),
		c.newServeCmd(),
		c.newVersionCmd(),
	)
	return root
}

func (c *cli) bind(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = c.v.BindPFlag(key, flags.Lookup(name))
	}
}

// initConfig reads the config file and enables WEBTMPL_* variables.
// Precedence: --config, then WEBTMPL_CONFIG_FILE, then .webtmpl.yml in the
// current directory. A missing default file is not an error.
func (c *cli) initConfig() error {
	explicit := true
	switch {
	case c.cfgFile != "":
		c.v.SetConfigFile(c.cfgFile)
	case os.Getenv(ConfigEnvFile) != "":
		c.v.SetConfigFile(os.Getenv(ConfigEnvFile))
	default:
		explicit = false
		c.v.AddConfigPath(".")
		c.v.SetConfigType(ConfigType)
		c.v.SetConfigName(ConfigName)
	}

	c.v.SetEnvPrefix(ConfigEnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	c.v.SetDefault(KeyServerAddr, FlagDefaultAddr)
	c.v.SetDefault(KeyLogFolder, FlagDefaultLogDir)
	c.v.SetDefault(KeySessionMinutes, FlagDefaultMinutes)
	c.v.SetDefault(KeyTemplatesIndex, webtmpl.DefaultIndexName)

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && errors.As(err, &notFound) {
			return nil
		}
		return fail(ExitCodeInputError, ErrMsgConfigFailed, err)
	}
	return nil
}

// engineOptions returns the engine options shared by render and serve.
func (c *cli) engineOptions() []webtmpl.Option {
	return []webtmpl.Option{
		webtmpl.WithExtension(c.v.GetString(KeyTemplatesExtension)),
		webtmpl.WithMaxInclusionPasses(c.v.GetInt(KeyTemplatesMaxPasses)),
	}
}

// newEngine maps engine construction errors onto exit codes.
func (c *cli) newEngine(opts ...webtmpl.Option) (*webtmpl.Engine, error) {
	opts = append(c.engineOptions(), opts...)
	engine, err := webtmpl.New(
		webtmpl.Mode(c.v.GetString(KeyTemplatesMode)),
		c.v.GetString(KeyTemplatesFolder),
		opts...,
	)
	if err == nil {
		return engine, nil
	}
	if webtmpl.IsInvalidMode(err) {
		return nil, fail(ExitCodeUsageError, ErrMsgEngineFailed, err)
	}
	return nil, fail(ExitCodeInputError, ErrMsgEngineFailed, err)
}
