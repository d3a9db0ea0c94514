package lsp

import (
	"sync"

	"github.com/walteh/twigls/pkg/position"
)

// Document is the editor's copy of an open file.
type Document struct {
	URI        string
	LanguageID string
	Version    int32
	Content    *position.TextDocument
}

// DocumentManager handles document operations. Keys are filesystem paths so
// differently encoded URIs for one file share an entry.
type DocumentManager struct {
	store *sync.Map // map[string]*Document
}

func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
	}
}

func (m *DocumentManager) Get(uri string) (*Document, bool) {
	content, ok := m.store.Load(position.PathFromURI(uri))
	if !ok {
		return nil, false
	}
	doc, ok := content.(*Document)
	return doc, ok
}

// Store replaces the document held for uri.
func (m *DocumentManager) Store(uri, languageID string, version int32, text string) *Document {
	doc := &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Content:    position.NewTextDocument(uri, text),
	}
	m.store.Store(position.PathFromURI(uri), doc)
	return doc
}

func (m *DocumentManager) Delete(uri string) {
	m.store.Delete(position.PathFromURI(uri))
}

// Overlay exposes the open documents to the walker.
func (m *DocumentManager) Overlay(uri string) (position.Document, bool) {
	doc, ok := m.Get(uri)
	if !ok {
		return nil, false
	}
	return doc.Content, true
}
