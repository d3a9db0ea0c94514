// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protocol

import (
	"context"
	"io"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/rs/zerolog"
)

var (
	RequestCancelledError = &jrpc2.Error{Code: -32800, Message: "JSON RPC cancelled"}
)

// Server is the set of client to server methods the language server answers.
type Server interface {
	Initialize(context.Context, *InitializeParams) (*InitializeResult, error)
	Initialized(context.Context, *InitializedParams) error
	Shutdown(context.Context) error
	Exit(context.Context) error
	DidOpen(context.Context, *DidOpenTextDocumentParams) error
	DidChange(context.Context, *DidChangeTextDocumentParams) error
	DidSave(context.Context, *DidSaveTextDocumentParams) error
	DidClose(context.Context, *DidCloseTextDocumentParams) error
	DidChangeConfiguration(context.Context, *DidChangeConfigurationParams) error
	Definition(context.Context, *DefinitionParams) (*Location, error)
	Hover(context.Context, *HoverParams) (*Hover, error)
	Completion(context.Context, *CompletionParams) (*CompletionList, error)
	References(context.Context, *ReferenceParams) ([]Location, error)
	DocumentSymbol(context.Context, *DocumentSymbolParams) ([]DocumentSymbol, error)
}

// Notifier pushes server to client notifications.
type Notifier interface {
	Notify(ctx context.Context, method string, params any) error
}

func buildServerDispatchMap(server Server) handler.Map {
	return handler.Map{
		"$/cancelRequest":                  createEmptyResultHandler(cancelRequest),
		"exit":                             createEmptyHandler(exit(server)),
		"initialize":                       createHandler(server.Initialize),
		"initialized":                      createEmptyResultHandler(server.Initialized),
		"shutdown":                         createEmptyHandler(server.Shutdown),
		"textDocument/completion":          createHandler(server.Completion),
		"textDocument/definition":          createHandler(server.Definition),
		"textDocument/didChange":           createEmptyResultHandler(server.DidChange),
		"textDocument/didClose":            createEmptyResultHandler(server.DidClose),
		"textDocument/didOpen":             createEmptyResultHandler(server.DidOpen),
		"textDocument/didSave":             createEmptyResultHandler(server.DidSave),
		"textDocument/documentSymbol":      createHandler(server.DocumentSymbol),
		"textDocument/hover":               createHandler(server.Hover),
		"textDocument/references":          createHandler(server.References),
		"workspace/didChangeConfiguration": createEmptyResultHandler(server.DidChangeConfiguration),
	}
}

func cancelRequest(ctx context.Context, params *CancelParams) error {
	zerolog.Ctx(ctx).Debug().Str("id", string(params.ID)).Msg("cancel requested")
	return nil
}

// exit stops the jrpc2 server once the handler has returned; Stop waits for
// in-flight handlers so it cannot run inline.
func exit(server Server) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := server.Exit(ctx)
		if srv := jrpc2.ServerFromContext(ctx); srv != nil {
			go srv.Stop()
		}
		return err
	}
}

type CallbackClient struct {
	serverOpts *jrpc2.ServerOptions
	client     *jrpc2.Server
}

var _ Notifier = (*CallbackClient)(nil)

func (c *CallbackClient) Notify(ctx context.Context, method string, params any) error {
	if rl, ok := c.serverOpts.RPCLog.(CallbackRPCLogger); ok {
		rl.LogCallbackRequestRaw(ctx, method, params)
	}

	if err := c.client.Notify(ctx, method, params); err != nil {
		return err
	}

	return nil
}

func NewCallbackClient(server *jrpc2.Server, serverOpts *jrpc2.ServerOptions) *CallbackClient {
	return &CallbackClient{client: server, serverOpts: serverOpts}
}

// CallbackRPCLogger is an RPCLog that also wants to see server pushes.
type CallbackRPCLogger interface {
	LogCallbackRequestRaw(ctx context.Context, method string, params any)
}

// ServerInstance owns a jrpc2 server bound to a Server implementation.
type ServerInstance struct {
	server   *jrpc2.Server
	callback *CallbackClient
}

// NewServerInstance builds the jrpc2 server. With logToClient set, every
// request context logs through a LogWriter that forwards to window/logMessage.
func NewServerInstance(ctx context.Context, server Server, opts *jrpc2.ServerOptions, logToClient bool) *ServerInstance {
	methods := buildServerDispatchMap(server)
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}

	opts.AllowPush = true

	base := ctx
	opts.NewContext = func() context.Context {
		return base
	}

	result := jrpc2.NewServer(methods, opts)
	callback := NewCallbackClient(result, opts)

	if logToClient {
		base = ApplyClientToZerolog(ctx, callback)
	}

	return &ServerInstance{server: result, callback: callback}
}

func (s *ServerInstance) Callback() *CallbackClient {
	return s.callback
}

func (s *ServerInstance) Server() *jrpc2.Server {
	return s.server
}

// StartAndWait serves LSP framed messages on r/w until the connection closes
// or the client sends exit.
func (s *ServerInstance) StartAndWait(r io.Reader, w io.WriteCloser) error {
	s.server.Start(channel.LSP(r, w))
	return s.server.Wait()
}

func newParseError(err error) *jrpc2.Error {
	return &jrpc2.Error{
		Code:    -32700, // Parse error
		Message: err.Error(),
	}
}

func createHandler[T any, O any](method func(ctx context.Context, params *T) (O, error)) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		if ctx.Err() != nil {
			return nil, RequestCancelledError
		}
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}

		result, err := method(ctx, &params)

		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

func createEmptyResultHandler[T any](method func(ctx context.Context, params *T) error) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}

		err := method(ctx, &params)

		return nil, err
	})
}

func createEmptyHandler(method func(ctx context.Context) error) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		return nil, method(ctx)
	})
}
