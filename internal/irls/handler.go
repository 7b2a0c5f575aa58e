// Package irls implements a tiny language server over the mid-end's
// textual IR format (internal/ir's printer output), not over source text:
// hovering an `name_vN` token reports where it was defined and, if the
// line carries a base-pointer annotation, which array it derives from.
// Only the notifications/requests hovering needs are implemented
// (open/change/close/hover); IR text has no completions to offer.
package irls

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Handler implements the glsp protocol.Handler methods this server
// registers in cmd/midend-ir-ls/main.go.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string // path -> last-known IR text
}

func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			HoverProvider: ptrBool(true),
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error { return nil }

func (h *Handler) Shutdown(ctx *glsp.Context) error { return nil }

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.content[path] = params.TextDocument.Text
	h.mu.Unlock()
	return nil
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// Full-sync only: the last change event carries the whole new text.
	last := params.ContentChanges[len(params.ContentChanges)-1]
	if change, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
		h.mu.Lock()
		h.content[path] = change.Text
		h.mu.Unlock()
	}
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// TextDocumentHover resolves the `name_vN` token at the cursor and reports
// its defining line, verbatim, plus the base-pointer chain spelled out in
// words rather than the printer's terse "(B_vK<~)name_vN" annotation.
func (h *Handler) TextDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	text := h.content[path]
	h.mu.RUnlock()
	if text == "" {
		return nil, nil
	}

	token := tokenAt(text, params.Position)
	if token == "" {
		return nil, nil
	}

	info := describe(text, token)
	if info == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindPlainText, Value: info},
	}, nil
}

var ssaNameRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*_v[0-9]+`)

// tokenAt extracts the name_vN token spanning position in text, if any.
func tokenAt(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	for _, loc := range ssaNameRe.FindAllStringIndex(line, -1) {
		if loc[0] <= col && col <= loc[1] {
			return line[loc[0]:loc[1]]
		}
	}
	return ""
}

// baseAnnotationRe matches the printer's base-pointer annotation
// immediately preceding a defined variable: "(<~)name_vN" when the
// variable is itself a base, "(Other_vK<~)name_vN" when it derives from
// another base.
var baseAnnotationRe = regexp.MustCompile(`\((?:([A-Za-z_][A-Za-z0-9_]*_v[0-9]+))?<~\)([A-Za-z_][A-Za-z0-9_]*_v[0-9]+)\s*=`)

// describe finds token's defining line in text (the first line of the
// form "[(base<~)]token = ...") and renders a short hover message.
func describe(text, token string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, token) && !strings.Contains(trimmed, ")"+token) {
			continue
		}
		m := baseAnnotationRe.FindStringSubmatch(trimmed)
		if m != nil && m[2] == token {
			var msg strings.Builder
			fmt.Fprintf(&msg, "defined at line %d: %s", i+1, trimmed)
			if m[1] == "" {
				msg.WriteString("\nthis value is itself an array base pointer")
			} else {
				fmt.Fprintf(&msg, "\nderives its address from base pointer %s", m[1])
			}
			return msg.String()
		}
		if strings.HasPrefix(trimmed, token+" =") || strings.HasPrefix(trimmed, token+"_=") {
			return fmt.Sprintf("defined at line %d: %s", i+1, trimmed)
		}
	}
	return fmt.Sprintf("no definition found for %s in this document", token)
}

func uriToPath(rawURI protocol.DocumentUri) (string, error) {
	u, err := url.Parse(string(rawURI))
	if err != nil {
		return "", fmt.Errorf("irls: invalid URI %s: %w", rawURI, err)
	}
	return u.Path, nil
}

func ptrBool(b bool) *bool { return &b }
func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
