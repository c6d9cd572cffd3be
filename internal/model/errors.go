package model

import (
	"errors"
	"fmt"
)

// ErrUnsupportedDocument marks an input whose root element is not a UCIS
// coverage database. Callers skip the file and continue the run.
var ErrUnsupportedDocument = errors.New("unsupported document root")

// ErrNoInputDocuments reports a run that found nothing to merge.
var ErrNoInputDocuments = errors.New("no coverage databases found")

// StructuralMismatchError reports two documents that disagree about coverage
// structure in a way summation cannot reconcile. Path is the identity chain
// of the offending node (module/instance/coverpoint/bin).
type StructuralMismatchError struct {
	Path   string
	Reason string
}

func (e *StructuralMismatchError) Error() string {
	if e.Path == "" {
		return "structural mismatch: " + e.Reason
	}

	return fmt.Sprintf("structural mismatch at %s: %s", e.Path, e.Reason)
}

// MalformedDocumentError reports a required attribute that is missing, or
// non-numeric where a number is required.
type MalformedDocumentError struct {
	Path  string
	Attr  string
	Value string
}

func (e *MalformedDocumentError) Error() string {
	where := e.Attr
	if e.Path != "" {
		where = e.Path + ": " + e.Attr
	}

	if e.Value == "" {
		return fmt.Sprintf("malformed document: missing attribute %s", where)
	}

	return fmt.Sprintf("malformed document: attribute %s is not numeric (%q)", where, e.Value)
}

// At stamps the structural path onto a model error that lacks one. Attribute
// parse helpers cannot know where in the tree they were called from, so the
// walker fills the path in before propagating.
func At(err error, path string) error {
	var malformed *MalformedDocumentError
	if errors.As(err, &malformed) && malformed.Path == "" {
		malformed.Path = path
	}

	var mismatch *StructuralMismatchError
	if errors.As(err, &mismatch) && mismatch.Path == "" {
		mismatch.Path = path
	}

	return err
}
