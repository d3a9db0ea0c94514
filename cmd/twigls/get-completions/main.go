package get_completions

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/twigls/pkg/completion"
	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/finder"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/resolver"
	"github.com/walteh/twigls/pkg/walker"
)

type Handler struct {
	workspace  string
	filePath   string
	line       int
	character  int
	configFile string

	fs  afero.Fs
	out io.Writer
}

func NewGetCompletionsCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-completions [workspace] [file-path] [line] [character]",
		Short: "get completions for a zero-based position in a template file",
	}

	cmd.Flags().StringVar(&me.configFile, "config", "", "settings file (default: discovered in the workspace)")
	cmd.Args = cobra.ExactArgs(4)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.workspace = args[0]
		me.filePath = args[1]
		var err error
		me.line, err = strconv.Atoi(args[2])
		if err != nil {
			return errors.Errorf("invalid line number: %w", err)
		}
		me.character, err = strconv.Atoi(args[3])
		if err != nil {
			return errors.Errorf("invalid character number: %w", err)
		}
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	root, err := filepath.Abs(me.workspace)
	if err != nil {
		return errors.Errorf("resolving workspace: %w", err)
	}

	path := me.filePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	settings, err := config.LoadWorkspace(me.fs, root, me.configFile)
	if err != nil {
		return errors.Errorf("loading settings: %w", err)
	}

	res := resolver.New(me.fs, root, settings.TemplateDirectories)
	w := walker.New(res, finder.NewDefaultFinder(me.fs))

	tmpl, err := w.Load(ctx, path)
	if err != nil {
		return errors.Errorf("failed to read template file: %w", err)
	}

	place := position.Place{Line: me.line, Character: me.character}
	items := completion.NewEngine(w).GetCompletions(ctx, tmpl, place, settings.PathResolution)

	enc := json.NewEncoder(me.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return errors.Errorf("failed to encode completions: %w", err)
	}

	return nil
}
