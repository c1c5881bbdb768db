package model

import "strings"

// ReservedFieldPrefix marks extended field names that belong to the
// serving layer. Fields with this prefix are never persisted with a
// revision.
const ReservedFieldPrefix = "server."

// Tiddler is a versioned document identified by (Bag, Title). A put
// always appends a new immutable revision; a get reflects the newest
// revision unless Revision is set to a specific revision id.
type Tiddler struct {
	Title string
	Bag   string

	// Text holds the revision body. For binary tiddlers it carries raw
	// bytes; see IsBinary.
	Text     string
	Tags     []string
	Fields   map[string]string
	Type     string
	Modifier string
	Modified string

	// Creator and Created are derived from the first revision and are
	// fixed for the tiddler's lifetime. Populated on get, ignored on put.
	Creator string
	Created string

	// Revision is the revision id this tiddler was loaded from. Zero
	// means "the newest revision".
	Revision int64
}

// NewTiddler returns a tiddler addressed by title within bag.
func NewTiddler(title, bag string) *Tiddler {
	return &Tiddler{Title: title, Bag: bag, Fields: map[string]string{}}
}

// IsBinary reports whether the tiddler's text must bypass text decoding.
// Anything without a text/ content type is treated as binary.
func (t *Tiddler) IsBinary() bool {
	return t.Type != "" && !strings.HasPrefix(t.Type, "text/")
}
