// Package adapter contains filesystem and serialization adapters for the
// covmerge CLI. It hides direct os/xml access so the merge workflow can be
// tested without touching the disk.
package adapter

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

// rootElement is the local name a coverage database root must carry.
const rootElement = "UCIS"

// DocumentStore abstracts coverage database serialization.
type DocumentStore interface {
	// Load parses one coverage database. A file whose root element is not
	// recognized returns model.ErrUnsupportedDocument so callers can skip it.
	Load(path m.Path) (*m.Database, error)

	// Save writes the database to path, replacing any existing file.
	Save(path m.Path, db *m.Database) error
}

// XMLDocumentStore reads and writes UCIS XML coverage databases.
type XMLDocumentStore struct{}

// NewXMLDocumentStore constructs an XMLDocumentStore ready to be wired into
// the workflow.
func NewXMLDocumentStore() *XMLDocumentStore {
	return &XMLDocumentStore{}
}

// Load parses the coverage database at path.
func (s *XMLDocumentStore) Load(path m.Path) (*m.Database, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return nil, err
	}

	defer func() { _ = f.Close() }()

	db, err := Decode(f)
	if err != nil {
		if errors.Is(err, m.ErrUnsupportedDocument) {
			return nil, err
		}

		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return db, nil
}

// Save serializes the database to path.
func (s *XMLDocumentStore) Save(path m.Path, db *m.Database) error {
	f, err := os.Create(string(path))
	if err != nil {
		return err
	}

	if err := Encode(f, db); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// Decode parses a UCIS database from r. Input elements may carry a namespace
// prefix; matching is by local name.
func Decode(r io.Reader) (*m.Database, error) {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			// No root element at all; treat like a foreign document.
			return nil, m.ErrUnsupportedDocument
		}

		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Local != rootElement {
			return nil, fmt.Errorf("%w: <%s>", m.ErrUnsupportedDocument, start.Name.Local)
		}

		var db m.Database
		if err := dec.DecodeElement(&db, &start); err != nil {
			return nil, err
		}

		normalizeRoot(&db)

		return &db, nil
	}
}

// Encode writes the database as indented XML with a declaration.
func Encode(w io.Writer, db *m.Database) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := enc.Encode(db); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")

	return err
}

// normalizeRoot drops the namespace bookkeeping picked up during decoding so
// the merged output serializes unprefixed.
func normalizeRoot(db *m.Database) {
	db.XMLName = xml.Name{Local: rootElement}

	attrs := db.Attrs[:0]

	for _, attr := range db.Attrs {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}

		attrs = append(attrs, attr)
	}

	db.Attrs = attrs
}
