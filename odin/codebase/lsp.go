package codebase

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

const lsName = "odinsyntax"

// LSPServer serves diagnostics, document symbols and folding ranges for
// Odin files. Documents are synchronized incrementally and reparsed with
// parser.Reparse.
type LSPServer struct {
	codebase *Codebase
	parser   *parser.Parser
	handler  protocol.Handler
	server   *server.Server
	version  string
}

func NewLSPServer(version string, p *parser.Parser) *LSPServer {
	ls := &LSPServer{
		parser:  p,
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentFoldingRange:   ls.textDocumentFoldingRange,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.codebase = New(rootDir, ls.parser)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return ls.codebase.ScanAll()
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	f := ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text))
	ls.publish(ctx, params.TextDocument.URI, f)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	f := ls.applyChanges(path, params.ContentChanges)
	if f != nil {
		ls.publish(ctx, params.TextDocument.URI, f)
	}
	return nil
}

// applyChanges applies content changes in order. Ranged changes are
// reparsed incrementally; a whole-document change is parsed afresh.
func (ls *LSPServer) applyChanges(path string, changes []any) *File {
	f := ls.codebase.GetFile(path)
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			f = ls.codebase.UpdateFile(path, []byte(c.Text))
		case protocol.TextDocumentContentChangeEvent:
			if f == nil || c.Range == nil {
				f = ls.codebase.UpdateFile(path, []byte(c.Text))
				continue
			}
			start := f.Offset(int(c.Range.Start.Line), int(c.Range.Start.Character))
			end := f.Offset(int(c.Range.End.Line), int(c.Range.End.Character))
			next, err := ls.codebase.EditFile(path, start, end, c.Text)
			if err != nil {
				log.Errorf("%s", err)
				return nil
			}
			f = next
		}
	}
	return f
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	var f *File
	if params.Text != nil {
		f = ls.codebase.UpdateFile(path, []byte(*params.Text))
	} else if f, err = ls.codebase.ScanFile(path); err != nil {
		return nil
	}
	ls.publish(ctx, params.TextDocument.URI, f)
	return nil
}

func (ls *LSPServer) publish(ctx *glsp.Context, uri protocol.DocumentUri, f *File) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(f),
	})
}

func toProtocolDiagnostics(f *File) []protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	out := []protocol.Diagnostic{}
	for _, d := range f.Diagnostics() {
		out = append(out, protocol.Diagnostic{
			Range:    toProtocolRange(f, d.Start, d.End),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	f := ls.fileFor(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}
	return toDocumentSymbols(f, f.Symbols()), nil
}

func toDocumentSymbols(f *File, syms []Symbol) []protocol.DocumentSymbol {
	out := []protocol.DocumentSymbol{}
	for _, s := range syms {
		out = append(out, protocol.DocumentSymbol{
			Name:           s.Name,
			Kind:           toProtocolSymbolKind(s.Kind),
			Range:          toProtocolRange(f, s.Node.Start, s.Node.End),
			SelectionRange: toProtocolRange(f, s.NameNode.Start, s.NameNode.End),
			Children:       toDocumentSymbols(f, s.Children),
		})
	}
	return out
}

func toProtocolSymbolKind(kind SymbolKind) protocol.SymbolKind {
	switch kind {
	case SymbolPackage:
		return protocol.SymbolKindPackage
	case SymbolImport, SymbolForeign:
		return protocol.SymbolKindModule
	case SymbolProcedure:
		return protocol.SymbolKindFunction
	case SymbolStruct, SymbolBitField:
		return protocol.SymbolKindStruct
	case SymbolEnum:
		return protocol.SymbolKindEnum
	case SymbolUnion:
		return protocol.SymbolKindClass
	case SymbolConstant:
		return protocol.SymbolKindConstant
	default:
		return protocol.SymbolKindVariable
	}
}

func (ls *LSPServer) textDocumentFoldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	f := ls.fileFor(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}
	var out []protocol.FoldingRange
	for _, fold := range f.Folds() {
		r := protocol.FoldingRange{
			StartLine: protocol.UInteger(fold.StartLine - 1),
			EndLine:   protocol.UInteger(fold.EndLine - 1),
		}
		if fold.Comment {
			kind := string(protocol.FoldingRangeKindComment)
			r.Kind = &kind
		}
		out = append(out, r)
	}
	return out, nil
}

func (ls *LSPServer) fileFor(uri protocol.DocumentUri) *File {
	path, err := uriToPath(uri)
	if err != nil || ls.codebase == nil {
		return nil
	}
	return ls.codebase.GetFile(path)
}

func toProtocolRange(f *File, start, end int) protocol.Range {
	sl, sc := f.Position(start)
	el, ec := f.Position(end)
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(sl), Character: protocol.UInteger(sc)},
		End:   protocol.Position{Line: protocol.UInteger(el), Character: protocol.UInteger(ec)},
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
