package serve_lsp

import (
	"context"
	"os"
	"path/filepath"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/debug"
	"github.com/walteh/twigls/pkg/lsp"
)

type Handler struct {
	debug       bool
	workspace   string
	configFile  string
	logToClient bool
	version     string
}

func NewServeLSPCommand(version string) *cobra.Command {
	me := &Handler{version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&me.workspace, "workspace", "", "workspace root used when the client sends none (default: current directory)")
	cmd.Flags().StringVar(&me.configFile, "config", "", "settings file (default: discovered in the workspace)")
	cmd.Flags().BoolVar(&me.logToClient, "log-to-client", false, "forward logs to the editor as window/logMessage")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

type RPCLogger struct {
}

func (me *RPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	zerolog.Ctx(ctx).Debug().Str("rpc_params", req.ParamString()).Str("rpc_id", req.ID()).Str("rpc_method", req.Method()).Msg("client request")
}

func (me *RPCLogger) LogResponse(ctx context.Context, res *jrpc2.Response) {
	zerolog.Ctx(ctx).Debug().Str("rpc_result", res.ResultString()).Str("rpc_id", res.ID()).Msg("server response")
}

func (me *RPCLogger) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	if method == "window/logMessage" {
		return
	}
	zerolog.Ctx(ctx).Debug().Str("rpc_method", method).Msg("server push")
}

func (me *Handler) Run(ctx context.Context) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.DebugLevel
	}
	ctx = debug.NewLogger(os.Stderr, level, false).WithContext(ctx)

	root := me.workspace
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return errors.Errorf("resolving workspace: %w", err)
	}

	fs := afero.NewOsFs()

	settings, err := config.LoadWorkspace(fs, root, me.configFile)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("using default settings")
	}

	server := lsp.NewServer(fs, root, settings).WithVersion(me.version)

	opts := &jrpc2.ServerOptions{
		RPCLog: &RPCLogger{},
	}

	instance := server.BuildServerInstance(ctx, opts, me.logToClient)

	zerolog.Ctx(ctx).Info().Str("workspace", root).Str("server_id", server.ID()).Msg("starting language server")

	if err := instance.StartAndWait(os.Stdin, os.Stdout); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
