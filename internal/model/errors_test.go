package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralMismatchError_Message(t *testing.T) {
	err := &StructuralMismatchError{Path: "mod/inst/cp", Reason: "coverpoint not present in the accumulator"}
	assert.Equal(t, "structural mismatch at mod/inst/cp: coverpoint not present in the accumulator", err.Error())

	bare := &StructuralMismatchError{Reason: "shape differs"}
	assert.Equal(t, "structural mismatch: shape differs", bare.Error())
}

func TestMalformedDocumentError_Message(t *testing.T) {
	missing := &MalformedDocumentError{Path: "mod/inst", Attr: "weight"}
	assert.Equal(t, "malformed document: missing attribute mod/inst: weight", missing.Error())

	nonNumeric := &MalformedDocumentError{Attr: "coverageCount", Value: "many"}
	assert.Contains(t, nonNumeric.Error(), `not numeric ("many")`)
}

func TestAt_StampsPathOnce(t *testing.T) {
	err := fmt.Errorf("reading bin: %w", &MalformedDocumentError{Attr: "weight"})

	stamped := At(err, "mod/inst")

	var malformed *MalformedDocumentError
	require.ErrorAs(t, stamped, &malformed)
	assert.Equal(t, "mod/inst", malformed.Path)

	// A path set by a deeper caller wins.
	At(stamped, "elsewhere")
	assert.Equal(t, "mod/inst", malformed.Path)
}

func TestAt_LeavesForeignErrorsAlone(t *testing.T) {
	err := fmt.Errorf("boom")
	assert.Same(t, err, At(err, "mod/inst"))
}
