package lsp_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/lsp"
	"github.com/walteh/twigls/pkg/lsp/protocol"
)

const (
	pageURI = "file:///ws/templates/page.twig"
	baseURI = "file:///ws/templates/base.twig"
)

type session struct {
	t           *testing.T
	ctx         context.Context
	client      *jrpc2.Client
	diagnostics chan protocol.PublishDiagnosticsParams
	logs        chan protocol.LogMessageParams
}

func startSession(t *testing.T, files map[string]string, logToClient bool) *session {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	ctx = zerolog.New(io.Discard).Level(zerolog.DebugLevel).WithContext(ctx)

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	serverReader, clientWriter := io.Pipe()
	clientReader, serverWriter := io.Pipe()

	server := lsp.NewServer(fs, "/", config.Default())
	instance := server.BuildServerInstance(ctx, nil, logToClient)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- instance.StartAndWait(serverReader, serverWriter)
	}()

	s := &session{
		t:           t,
		ctx:         ctx,
		diagnostics: make(chan protocol.PublishDiagnosticsParams, 64),
		logs:        make(chan protocol.LogMessageParams, 1024),
	}

	s.client = jrpc2.NewClient(channel.LSP(clientReader, clientWriter), &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			switch req.Method() {
			case "textDocument/publishDiagnostics":
				var p protocol.PublishDiagnosticsParams
				if err := req.UnmarshalParams(&p); err == nil {
					s.diagnostics <- p
				}
			case "window/logMessage":
				var p protocol.LogMessageParams
				if err := req.UnmarshalParams(&p); err == nil {
					select {
					case s.logs <- p:
					default:
					}
				}
			}
		},
	})

	t.Cleanup(func() {
		_ = s.client.Close()
		select {
		case <-serverDone:
		case <-time.After(2 * time.Second):
		}
	})

	return s
}

func (s *session) initialize(settings string) protocol.InitializeResult {
	s.t.Helper()
	params := map[string]any{
		"processId": 1,
		"rootUri":   "file:///ws",
	}
	if settings != "" {
		params["initializationOptions"] = rawJSON(settings)
	}
	var result protocol.InitializeResult
	require.NoError(s.t, s.client.CallResult(s.ctx, "initialize", params, &result))
	require.NoError(s.t, s.client.Notify(s.ctx, "initialized", struct{}{}))
	return result
}

func (s *session) open(uri, text string) {
	s.t.Helper()
	require.NoError(s.t, s.client.Notify(s.ctx, "textDocument/didOpen", &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: protocol.DocumentURI(uri), LanguageID: "twig", Version: 1, Text: text},
	}))
}

func (s *session) nextDiagnostics() protocol.PublishDiagnosticsParams {
	s.t.Helper()
	select {
	case p := <-s.diagnostics:
		return p
	case <-time.After(3 * time.Second):
		s.t.Fatal("timed out waiting for diagnostics")
		return protocol.PublishDiagnosticsParams{}
	}
}

func position(text, needle string, delta int) protocol.Position {
	idx := strings.Index(text, needle) + delta
	line := strings.Count(text[:idx], "\n")
	col := idx - (strings.LastIndex(text[:idx], "\n") + 1)
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}

func textDocumentPosition(uri string, pos protocol.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Position:     pos,
	}
}

type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) {
	return []byte(r), nil
}

var workspace = map[string]string{
	"/ws/templates/base.twig": "<html>{% block content %}{% endblock %}{% block footer %}{% endblock %}</html>",
	"/ws/templates/nav.twig":  "<nav></nav>",
}

func TestInitializeCapabilities(t *testing.T) {
	s := startSession(t, workspace, false)
	result := s.initialize("")

	require.NotNil(t, result.Capabilities.TextDocumentSync)
	assert.Equal(t, protocol.SyncFull, result.Capabilities.TextDocumentSync.Change)
	assert.True(t, result.Capabilities.TextDocumentSync.OpenClose)
	assert.True(t, result.Capabilities.HoverProvider)
	assert.True(t, result.Capabilities.DefinitionProvider)
	assert.True(t, result.Capabilities.ReferencesProvider)
	assert.True(t, result.Capabilities.DocumentSymbolProvider)
	require.NotNil(t, result.Capabilities.CompletionProvider)
	assert.Equal(t, []string{"'", "\"", "/", "(", "{", "%", " "}, result.Capabilities.CompletionProvider.TriggerCharacters)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, lsp.Name, result.ServerInfo.Name)
}

func TestDiagnosticsLifecycle(t *testing.T) {
	s := startSession(t, workspace, false)
	s.initialize("")

	s.open(pageURI, "{% extends 'missing.twig' %}")
	got := s.nextDiagnostics()
	assert.Equal(t, protocol.DocumentURI(pageURI), got.URI)
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, "Template 'missing.twig' not found", got.Diagnostics[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverity(1), got.Diagnostics[0].Severity)
	assert.Equal(t, "twig", got.Diagnostics[0].Source)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 12},
		End:   protocol.Position{Line: 0, Character: 24},
	}, got.Diagnostics[0].Range)

	require.NoError(t, s.client.Notify(s.ctx, "textDocument/didChange", &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: pageURI},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "{% extends 'base.twig' %}"}},
	}))
	got = s.nextDiagnostics()
	assert.Empty(t, got.Diagnostics)
	require.NotNil(t, got.Version)
	assert.Equal(t, int32(2), *got.Version)

	require.NoError(t, s.client.Notify(s.ctx, "textDocument/didClose", &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: pageURI},
	}))
	got = s.nextDiagnostics()
	assert.Empty(t, got.Diagnostics)
	assert.NotNil(t, got.Diagnostics)
}

func TestDiagnosticsDisabledBySettings(t *testing.T) {
	s := startSession(t, workspace, false)
	s.initialize(`{"twigGoToDefinition": {"diagnostics": {"enabled": false}}}`)

	s.open(pageURI, "{% extends 'missing.twig' %}")
	got := s.nextDiagnostics()
	assert.Empty(t, got.Diagnostics)

	require.NoError(t, s.client.Notify(s.ctx, "workspace/didChangeConfiguration", map[string]any{
		"settings": rawJSON(`{"twigGoToDefinition": {"diagnostics": {"enabled": true}}}`),
	}))
	got = s.nextDiagnostics()
	assert.Len(t, got.Diagnostics, 1)
}

func TestQueries(t *testing.T) {
	page := "{% extends 'base.twig' %}\n{% block content %}{{ parent() }}{{ title }}{% endblock %}\n{% include 'nav.twig' %}"

	s := startSession(t, workspace, false)
	s.initialize("")
	s.open(pageURI, page)
	s.nextDiagnostics()

	t.Run("definition of extends", func(t *testing.T) {
		var loc *protocol.Location
		err := s.client.CallResult(s.ctx, "textDocument/definition", &protocol.DefinitionParams{
			TextDocumentPositionParams: textDocumentPosition(pageURI, position(page, "base.twig", 2)),
		}, &loc)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, protocol.DocumentURI(baseURI), loc.URI)
		assert.Equal(t, protocol.Range{}, loc.Range)
	})

	t.Run("definition of overridden block", func(t *testing.T) {
		var loc *protocol.Location
		err := s.client.CallResult(s.ctx, "textDocument/definition", &protocol.DefinitionParams{
			TextDocumentPositionParams: textDocumentPosition(pageURI, position(page, "content", 1)),
		}, &loc)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, protocol.DocumentURI(baseURI), loc.URI)
		assert.Equal(t, uint32(6), loc.Range.Start.Character)
	})

	t.Run("definition of nothing", func(t *testing.T) {
		var loc *protocol.Location
		err := s.client.CallResult(s.ctx, "textDocument/definition", &protocol.DefinitionParams{
			TextDocumentPositionParams: textDocumentPosition(pageURI, protocol.Position{Line: 1, Character: 0}),
		}, &loc)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})

	t.Run("hover over block", func(t *testing.T) {
		var h *protocol.Hover
		err := s.client.CallResult(s.ctx, "textDocument/hover", &protocol.HoverParams{
			TextDocumentPositionParams: textDocumentPosition(pageURI, position(page, "content", 2)),
		}, &h)
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Equal(t, protocol.Markdown, h.Contents.Kind)
		assert.Contains(t, h.Contents.Value, "**Block**: `content`")
		assert.Contains(t, h.Contents.Value, "**Overrides block in**: `base.twig`")
	})

	t.Run("references to variable", func(t *testing.T) {
		var locs []protocol.Location
		err := s.client.CallResult(s.ctx, "textDocument/references", &protocol.ReferenceParams{
			TextDocumentPositionParams: textDocumentPosition(pageURI, position(page, "title", 1)),
		}, &locs)
		require.NoError(t, err)
		require.Len(t, locs, 1)
		assert.Equal(t, protocol.DocumentURI(pageURI), locs[0].URI)
	})

	t.Run("document symbols", func(t *testing.T) {
		var syms []protocol.DocumentSymbol
		err := s.client.CallResult(s.ctx, "textDocument/documentSymbol", &protocol.DocumentSymbolParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: pageURI},
		}, &syms)
		require.NoError(t, err)

		var names []string
		for _, sym := range syms {
			names = append(names, sym.Name)
		}
		assert.Equal(t, []string{`extends "base.twig"`, "Blocks", "Includes", "Variables"}, names)
	})
}

func TestCompletion(t *testing.T) {
	s := startSession(t, workspace, false)
	s.initialize("")

	text := "{% extends '"
	s.open(pageURI, text)
	s.nextDiagnostics()

	var list protocol.CompletionList
	err := s.client.CallResult(s.ctx, "textDocument/completion", &protocol.CompletionParams{
		TextDocumentPositionParams: textDocumentPosition(pageURI, protocol.Position{Line: 0, Character: uint32(len(text))}),
	}, &list)
	require.NoError(t, err)

	var labels []string
	for _, item := range list.Items {
		assert.Equal(t, protocol.FileCompletion, item.Kind)
		labels = append(labels, item.Label)
	}
	assert.Contains(t, strings.Join(labels, ","), "base.twig")
	assert.Contains(t, strings.Join(labels, ","), "nav.twig")
}

func TestParseErrorOnBadParams(t *testing.T) {
	s := startSession(t, workspace, false)
	s.initialize("")

	_, err := s.client.Call(s.ctx, "textDocument/hover", []int{1, 2})
	require.Error(t, err)

	var rpcErr *jrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.EqualValues(t, -32700, rpcErr.Code)
}

func TestUnknownDocument(t *testing.T) {
	s := startSession(t, workspace, false)
	s.initialize("")

	_, err := s.client.Call(s.ctx, "textDocument/hover", &protocol.HoverParams{
		TextDocumentPositionParams: textDocumentPosition("file:///ws/nope.twig", protocol.Position{}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

func TestLogToClient(t *testing.T) {
	s := startSession(t, workspace, true)
	s.initialize("")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case msg := <-s.logs:
			if strings.HasPrefix(msg.Message, "initializing server") {
				assert.Equal(t, protocol.Info, msg.Type)
				assert.Contains(t, msg.Message, "root=/ws")
				return
			}
		case <-deadline:
			t.Fatal("no log message forwarded")
		}
	}
}
