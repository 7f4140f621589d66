package main

import (
	"github.com/spf13/cobra"

	"github.com/itsatony/go-webtmpl"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	vars     []string
	varsFile string
	ajax     bool
	url      string
	output   string
}

func (c *cli) newRenderCmd() *cobra.Command {
	cfg := &renderConfig{}

	cmd := &cobra.Command{
		Use:     CmdNameRender + " <template>",
		Short:   HelpRenderShort,
		Example: HelpRenderExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, cfg, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&cfg.vars, FlagVar, FlagVarShort, nil, "placeholder value key=value (repeatable)")
	flags.StringVarP(&cfg.varsFile, FlagVarsFile, FlagVarsFileShort, "", "YAML or JSON file with placeholder values (- for stdin)")
	flags.BoolVar(&cfg.ajax, FlagAjax, false, "render as an ajax request")
	flags.StringVar(&cfg.url, FlagURL, "", "value of {{ url }}")
	flags.StringVarP(&cfg.output, FlagOutput, FlagOutputShort, FlagDefaultOutput, "output file (- for stdout)")
	return cmd
}

func (c *cli) runRender(cmd *cobra.Command, cfg *renderConfig, name string) error {
	vars, err := loadVars(cfg.varsFile, cfg.vars, c.stdin)
	if err != nil {
		return err
	}

	engine, err := c.newEngine(
		webtmpl.WithDebugFlag(webtmpl.StaticDebug(c.v.GetBool(KeyLogDebug))),
		webtmpl.WithDefaultRequest(webtmpl.StaticRequest{Ajax: cfg.ajax, URL: cfg.url}),
	)
	if err != nil {
		return err
	}

	out, err := engine.Show(cmd.Context(), name, vars)
	if err != nil {
		if webtmpl.IsNotFound(err) {
			return fail(ExitCodeNotFound, ErrMsgTemplateNotFound, err)
		}
		return fail(ExitCodeError, ErrMsgRenderFailed, err)
	}

	if err := writeOutput(cfg.output, []byte(out+FmtNewline), c.stdout); err != nil {
		return fail(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}
