package objects

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/eqldoc/pkg/build"
	"github.com/walteh/eqldoc/pkg/inventory"
	"github.com/walteh/eqldoc/pkg/logging"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	root       string
	format     string // text, json
	configPath string
	imports    []string
	export     string
	project    string
	jobs       int
	debug      bool

	fs     afero.Fs
	out    io.Writer
	logOut io.Writer
}

func NewObjectsCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs(), logOut: os.Stderr}

	cmd := &cobra.Command{
		Use:   "objects [source-dir]",
		Short: "list the objects declared by the documentation sources",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "the output format (text, json)")
	cmd.Flags().StringVar(&me.configPath, "config", "", "config file, defaults to eqldoc.hcl or eqldoc.yaml in the source dir")
	cmd.Flags().StringSliceVar(&me.imports, "import", nil, "inventory files of other projects to resolve references against")
	cmd.Flags().StringVar(&me.export, "export", "", "write the inventory of this project to the given file")
	cmd.Flags().StringVar(&me.project, "project", "", "project name recorded in the exported inventory")
	cmd.Flags().IntVar(&me.jobs, "jobs", 0, "number of documents processed at once, overrides the config")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
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
	ctx = logging.WithContext(ctx, me.logOut, logging.Options{Debug: me.debug, WithColor: !color.NoColor, Caller: me.debug})

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
	if res.Err != nil {
		// objects of failed documents are already dropped, the rest is still listed
		for _, doc := range res.Failed {
			zerolog.Ctx(ctx).Warn().Str("document", doc).Msg("document skipped, run check for details")
		}
	}

	inv := session.Inventory(me.project)

	if me.export != "" {
		if err := inventory.Save(me.fs, me.export, inv); err != nil {
			return err
		}
	}

	switch me.format {
	case "json":
		return inventory.Encode(me.out, inv)
	case "", "text":
		return writeTable(me.out, inv)
	}
	return errors.Errorf("unknown format %q", me.format)
}

func writeTable(w io.Writer, inv *inventory.Inventory) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tDOCUMENT\tSUMMARY")
	for _, e := range inv.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Kind, e.Name, e.Document, e.Summary)
	}
	if err := tw.Flush(); err != nil {
		return errors.Errorf("writing objects: %w", err)
	}
	return nil
}
