package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

func newCross(name string, exprs []string, bins ...*m.CrossBin) *m.Cross {
	cross := &m.Cross{Name: name}
	for _, expr := range exprs {
		cross.Exprs = append(cross.Exprs, m.CrossExpr{Text: expr})
	}

	cross.Bins = bins

	return cross
}

// crossTuples flattens a cross's bins into (tuple key, hits) pairs in
// document order.
func crossTuples(t *testing.T, cross *m.Cross) []struct {
	Key  string
	Hits uint64
} {
	t.Helper()

	out := make([]struct {
		Key  string
		Hits uint64
	}, 0, len(cross.Bins))

	for _, cb := range cross.Bins {
		tuple, err := cb.Tuple()
		require.NoError(t, err)

		hits, err := cb.Contents.Hits()
		require.NoError(t, err)

		out = append(out, struct {
			Key  string
			Hits uint64
		}{tuple.Key(), hits})
	}

	return out
}

func TestMergeCrossBins_FoldsMatchingTuplesAndUnionsNewOnes(t *testing.T) {
	acc := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0, 1}, 3),
	)
	src := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0, 1}, 5),
		m.NewCrossBin(m.IndexTuple{2, 3}, 7),
	)

	require.NoError(t, mergeCrossBins("mod/inst/x", acc, src))

	got := crossTuples(t, acc)
	require.Len(t, got, 2)
	assert.Equal(t, "0,1", got[0].Key)
	assert.Equal(t, uint64(8), got[0].Hits)
	assert.Equal(t, "2,3", got[1].Key)
	assert.Equal(t, uint64(7), got[1].Hits)
}

func TestMergeCrossBins_AccumulatorTuplesKeepTheirOrder(t *testing.T) {
	acc := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{1, 0}, 1),
		m.NewCrossBin(m.IndexTuple{0, 0}, 2),
	)
	src := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0, 0}, 4),
		m.NewCrossBin(m.IndexTuple{1, 1}, 6),
	)

	require.NoError(t, mergeCrossBins("mod/inst/x", acc, src))

	got := crossTuples(t, acc)
	require.Len(t, got, 3)
	assert.Equal(t, "1,0", got[0].Key)
	assert.Equal(t, "0,0", got[1].Key)
	assert.Equal(t, "1,1", got[2].Key)
	assert.Equal(t, uint64(6), got[1].Hits)
}

func TestMergeCrossBins_EmptySourceLeavesAccumulatorUntouched(t *testing.T) {
	acc := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0, 1}, 3),
	)
	src := newCross("x", []string{"a_cp", "b_cp"})

	require.NoError(t, mergeCrossBins("mod/inst/x", acc, src))

	got := crossTuples(t, acc)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].Hits)
}

func TestMergeCrossBins_TupleArityMismatchIsFatal(t *testing.T) {
	acc := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0, 1}, 3),
	)
	src := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0, 1, 2}, 5),
	)

	err := mergeCrossBins("mod/inst/x", acc, src)

	var mismatch *m.StructuralMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "mod/inst/x", mismatch.Path)
	assert.Contains(t, mismatch.Reason, "3 indices")
	assert.Contains(t, mismatch.Reason, "2 coverpoints")
}

func TestMergeCrossBins_ShortAccumulatorTupleIsFatalToo(t *testing.T) {
	acc := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0}, 3),
	)
	src := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0, 1}, 5),
	)

	err := mergeCrossBins("mod/inst/x", acc, src)

	var mismatch *m.StructuralMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Reason, "1 indices")
}

func TestMergeCrossBins_NonNumericIndexIsMalformed(t *testing.T) {
	bad := m.NewCrossBin(m.IndexTuple{0, 1}, 5)
	bad.Indexes[1].Text = "one"

	acc := newCross("x", []string{"a_cp", "b_cp"},
		m.NewCrossBin(m.IndexTuple{0, 1}, 3),
	)
	src := newCross("x", []string{"a_cp", "b_cp"}, bad)

	err := mergeCrossBins("mod/inst/x", acc, src)

	var malformed *m.MalformedDocumentError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "mod/inst/x", malformed.Path)
	assert.Equal(t, "index", malformed.Attr)
}

func TestMergeThroughDocuments_CrossBinsAccumulate(t *testing.T) {
	merger := NewMerger(parseDoc(t, docAXML))
	require.NoError(t, merger.MergeDocument(parseDoc(t, docBXML)))

	cross := merger.Database().
		FindModule("arb_cov").
		FindInstance("arb_cov_inst").
		FindCross("mode_x_burst")
	require.NotNil(t, cross)

	got := crossTuples(t, cross)
	require.Len(t, got, 2)
	assert.Equal(t, "0,1", got[0].Key)
	assert.Equal(t, uint64(8), got[0].Hits)
	assert.Equal(t, "1,0", got[1].Key)
	assert.Equal(t, uint64(2), got[1].Hits)

	// The annotation survives the rebuild.
	require.NotNil(t, cross.UserAttr)
	assert.Equal(t, "mode_x_burst", cross.UserAttr.Text)
}
