package lsp

import (
	"github.com/walteh/twigls/pkg/completion/providers"
	"github.com/walteh/twigls/pkg/diagnostic"
	"github.com/walteh/twigls/pkg/hover"
	"github.com/walteh/twigls/pkg/lsp/protocol"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/symbols"
)

func toPlace(p protocol.Position) position.Place {
	return position.Place{Line: int(p.Line), Character: int(p.Character)}
}

func toPosition(p position.Place) protocol.Position {
	return protocol.Position{Line: uint32(max(p.Line, 0)), Character: uint32(max(p.Character, 0))}
}

func toRange(r position.Range) protocol.Range {
	return protocol.Range{Start: toPosition(r.Start), End: toPosition(r.End)}
}

func toLocation(l position.Location) protocol.Location {
	return protocol.Location{URI: protocol.DocumentURI(l.URI), Range: toRange(l.Range)}
}

func toLocations(locs []position.Location) []protocol.Location {
	out := make([]protocol.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, toLocation(l))
	}
	return out
}

func toHover(info *hover.HoverInfo) *protocol.Hover {
	rng := toRange(info.Range)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: info.Markdown()},
		Range:    &rng,
	}
}

var completionKinds = map[string]protocol.CompletionItemKind{
	providers.KindFile:     protocol.FileCompletion,
	providers.KindProperty: protocol.PropertyCompletion,
	providers.KindVariable: protocol.VariableCompletion,
	providers.KindKeyword:  protocol.KeywordCompletion,
}

func toCompletionItems(items []providers.CompletionItem) []protocol.CompletionItem {
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, item := range items {
		converted := protocol.CompletionItem{
			Label:      item.Label,
			Kind:       completionKinds[item.Kind],
			Detail:     item.Detail,
			InsertText: item.InsertText,
			SortText:   item.SortText,
			FilterText: item.FilterText,
		}
		if item.Documentation != "" {
			converted.Documentation = &protocol.MarkupContent{Kind: protocol.Markdown, Value: item.Documentation}
		}
		out = append(out, converted)
	}
	return out
}

func toDocumentSymbols(syms []symbols.Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(syms))
	for _, s := range syms {
		converted := protocol.DocumentSymbol{
			Name:           s.Name,
			Detail:         s.Detail,
			Kind:           protocol.SymbolKind(s.Kind),
			Range:          toRange(s.Range),
			SelectionRange: toRange(s.SelectionRange),
		}
		if len(s.Children) > 0 {
			converted.Children = toDocumentSymbols(s.Children)
		}
		out = append(out, converted)
	}
	return out
}

func toDiagnostics(diags []diagnostic.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, protocol.Diagnostic{
			Range:    toRange(d.Range),
			Severity: protocol.DiagnosticSeverity(d.Severity),
			Source:   d.Source,
			Message:  d.Message,
		})
	}
	return out
}
