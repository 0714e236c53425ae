package check

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/eqldoc/pkg/build"
	"github.com/walteh/eqldoc/pkg/diagnostic"
	"github.com/walteh/eqldoc/pkg/logging"
	"gitlab.com/tozd/go/errors"
)

var ErrProblems = errors.New("documentation has problems")

type Handler struct {
	root       string
	format     string // text, vscode
	configPath string
	imports    []string
	jobs       int
	debug      bool
	noColor    bool

	fs     afero.Fs
	out    io.Writer
	logOut io.Writer
}

func NewCheckCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs(), logOut: os.Stderr}

	cmd := &cobra.Command{
		Use:   "check [source-dir]",
		Short: "build the documentation sources and report every problem",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "the format of the diagnostics (text, vscode)")
	cmd.Flags().StringVar(&me.configPath, "config", "", "config file, defaults to eqldoc.hcl or eqldoc.yaml in the source dir")
	cmd.Flags().StringSliceVar(&me.imports, "import", nil, "inventory files of other projects to resolve references against")
	cmd.Flags().IntVar(&me.jobs, "jobs", 0, "number of documents processed at once, overrides the config")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&me.noColor, "no-color", false, "disable colored output")
	cmd.Args = cobra.MaximumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.root = "."
		if len(args) > 0 {
			me.root = args[0]
		}
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	withColor := !me.noColor && !color.NoColor

	ctx = logging.WithContext(ctx, me.logOut, logging.Options{Debug: me.debug, WithColor: withColor, Caller: me.debug})

	formatter, err := diagnostic.NewFormatter(me.format, withColor)
	if err != nil {
		return err
	}

	session, err := build.OpenProject(ctx, me.fs, me.root, build.ProjectOptions{
		ConfigPath: me.configPath,
		Imports:    me.imports,
		Jobs:       me.jobs,
	})
	if err != nil {
		return err
	}

	res, err := session.Build(ctx, me.root)
	if err != nil {
		return errors.Errorf("building %s: %w", me.root, err)
	}

	diags, err := diagnostic.NewDefaultGenerator().Generate(ctx, res.Err)
	if err != nil {
		return errors.Errorf("generating diagnostics: %w", err)
	}

	out, err := formatter.Format(diags)
	if err != nil {
		return errors.Errorf("formatting diagnostics: %w", err)
	}
	if _, err := me.out.Write(out); err != nil {
		return errors.Errorf("writing diagnostics: %w", err)
	}

	if diags.Len() > 0 {
		return errors.Errorf("%w: %d document(s) failed", ErrProblems, len(res.Failed))
	}
	return nil
}
