package get_diagnostics

import (
	"context"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/diagnostic"
	"github.com/walteh/twigls/pkg/finder"
	"github.com/walteh/twigls/pkg/resolver"
	"github.com/walteh/twigls/pkg/walker"
)

type Handler struct {
	workspace  string
	format     string // text, json, yaml
	configFile string

	fs  afero.Fs
	out io.Writer
}

func NewGetDiagnosticsCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-diagnostics [workspace]",
		Short: "print diagnostics for every template in a workspace",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "output format: text, json or yaml")
	cmd.Flags().StringVar(&me.configFile, "config", "", "settings file (default: discovered in the workspace)")
	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.workspace = args[0]
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	formatter, err := diagnostic.NewFormatter(me.format, !color.NoColor)
	if err != nil {
		return errors.Errorf("creating formatter: %w", err)
	}

	root, err := filepath.Abs(me.workspace)
	if err != nil {
		return errors.Errorf("resolving workspace: %w", err)
	}

	settings, err := config.LoadWorkspace(me.fs, root, me.configFile)
	if err != nil {
		return errors.Errorf("loading settings: %w", err)
	}

	reports, err := me.collect(ctx, root, settings)
	if err != nil {
		return err
	}

	output, err := formatter.Format(reports)
	if err != nil {
		return errors.Errorf("formatting diagnostics: %w", err)
	}

	if _, err := me.out.Write(output); err != nil {
		return errors.Errorf("writing diagnostics: %w", err)
	}

	return nil
}

// collect reports every discovered template, including the ones without
// findings, in discovery order.
func (me *Handler) collect(ctx context.Context, root string, settings config.Settings) ([]diagnostic.Report, error) {
	res := resolver.New(me.fs, root, settings.TemplateDirectories)
	w := walker.New(res, finder.NewDefaultFinder(me.fs))
	gen := diagnostic.NewDefaultGenerator(w, settings.Diagnostics)

	reports := []diagnostic.Report{}
	for _, path := range w.Templates(ctx) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("collecting diagnostics: %w", err)
		}

		tmpl, err := w.Load(ctx, path)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skipping unreadable template")
			continue
		}

		diags := gen.Generate(ctx, tmpl)
		if diags == nil {
			diags = []diagnostic.Diagnostic{}
		}
		reports = append(reports, diagnostic.Report{URI: tmpl.Doc.URI(), Diagnostics: diags})
	}
	return reports, nil
}
