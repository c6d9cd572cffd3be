package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"covmerge.dev/pkg/covmerge/internal/adapter"
	m "covmerge.dev/pkg/covmerge/internal/model"
)

// docA and docB share the same coverage structure; docB additionally
// introduces the "mid" bin and a second observed cross combination.
const docAXML = `<?xml version="1.0" encoding="UTF-8"?>
<ucis:UCIS xmlns:ucis="http://www.w3.org/2001/XMLSchema-instance" ucisVersion="1.0">
  <ucis:instanceCoverages moduleName="arb_cov">
    <ucis:covergroupCoverage>
      <ucis:cgInstance name="arb_cov_inst">
        <ucis:options weight="1"/>
        <ucis:coverpoint name="mode_cp">
          <ucis:options weight="1"/>
          <ucis:coverpointBin name="lo" type="default" alias="3">
            <ucis:range from="0" to="10">
              <ucis:contents coverageCount="3"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
          <ucis:coverpointBin name="hi" type="default" alias="0">
            <ucis:range from="11" to="20">
              <ucis:contents coverageCount="0"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
        </ucis:coverpoint>
        <ucis:coverpoint name="burst_cp">
          <ucis:options weight="3"/>
          <ucis:coverpointBin name="single" type="default" alias="4">
            <ucis:range from="1" to="1">
              <ucis:contents coverageCount="4"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
          <ucis:coverpointBin name="multi" type="default" alias="1">
            <ucis:range from="2" to="16">
              <ucis:contents coverageCount="1"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
        </ucis:coverpoint>
        <ucis:cross name="mode_x_burst">
          <ucis:options weight="2"/>
          <ucis:crossExpr>mode_cp</ucis:crossExpr>
          <ucis:crossExpr>burst_cp</ucis:crossExpr>
          <ucis:crossBin name="" key="0" type="default">
            <ucis:index>0</ucis:index>
            <ucis:index>1</ucis:index>
            <ucis:contents coverageCount="3"></ucis:contents>
          </ucis:crossBin>
          <ucis:userAttr key="CROSS" type="str">mode_x_burst</ucis:userAttr>
        </ucis:cross>
      </ucis:cgInstance>
    </ucis:covergroupCoverage>
  </ucis:instanceCoverages>
</ucis:UCIS>`

const docBXML = `<?xml version="1.0" encoding="UTF-8"?>
<ucis:UCIS xmlns:ucis="http://www.w3.org/2001/XMLSchema-instance" ucisVersion="1.0">
  <ucis:instanceCoverages moduleName="arb_cov">
    <ucis:covergroupCoverage>
      <ucis:cgInstance name="arb_cov_inst">
        <ucis:options weight="1"/>
        <ucis:coverpoint name="mode_cp">
          <ucis:options weight="1"/>
          <ucis:coverpointBin name="lo" type="default" alias="2">
            <ucis:range from="0" to="10">
              <ucis:contents coverageCount="2"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
          <ucis:coverpointBin name="hi" type="default" alias="5">
            <ucis:range from="11" to="20">
              <ucis:contents coverageCount="5"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
          <ucis:coverpointBin name="mid" type="default" alias="1">
            <ucis:range from="21" to="30">
              <ucis:contents coverageCount="1"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
        </ucis:coverpoint>
        <ucis:coverpoint name="burst_cp">
          <ucis:options weight="3"/>
          <ucis:coverpointBin name="single" type="default" alias="0">
            <ucis:range from="1" to="1">
              <ucis:contents coverageCount="0"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
          <ucis:coverpointBin name="multi" type="default" alias="7">
            <ucis:range from="2" to="16">
              <ucis:contents coverageCount="7"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
        </ucis:coverpoint>
        <ucis:cross name="mode_x_burst">
          <ucis:options weight="2"/>
          <ucis:crossExpr>mode_cp</ucis:crossExpr>
          <ucis:crossExpr>burst_cp</ucis:crossExpr>
          <ucis:crossBin name="" key="0" type="default">
            <ucis:index>0</ucis:index>
            <ucis:index>1</ucis:index>
            <ucis:contents coverageCount="5"></ucis:contents>
          </ucis:crossBin>
          <ucis:crossBin name="" key="0" type="default">
            <ucis:index>1</ucis:index>
            <ucis:index>0</ucis:index>
            <ucis:contents coverageCount="2"></ucis:contents>
          </ucis:crossBin>
          <ucis:userAttr key="CROSS" type="str">mode_x_burst</ucis:userAttr>
        </ucis:cross>
      </ucis:cgInstance>
    </ucis:covergroupCoverage>
  </ucis:instanceCoverages>
</ucis:UCIS>`

// docCXML carries a covergroup type unknown to docA/docB.
const docCXML = `<?xml version="1.0" encoding="UTF-8"?>
<ucis:UCIS xmlns:ucis="http://www.w3.org/2001/XMLSchema-instance">
  <ucis:instanceCoverages moduleName="fifo_cov">
    <ucis:covergroupCoverage>
      <ucis:cgInstance name="fifo_cov_inst">
        <ucis:options weight="1"/>
        <ucis:coverpoint name="depth_cp">
          <ucis:options weight="1"/>
          <ucis:coverpointBin name="empty" type="default" alias="1">
            <ucis:range from="0" to="0">
              <ucis:contents coverageCount="1"></ucis:contents>
            </ucis:range>
          </ucis:coverpointBin>
        </ucis:coverpoint>
      </ucis:cgInstance>
    </ucis:covergroupCoverage>
  </ucis:instanceCoverages>
</ucis:UCIS>`

const foreignXML = `<?xml version="1.0" encoding="UTF-8"?>
<simulation tool="other"><result pass="true"/></simulation>`

func parseDoc(t *testing.T, text string) *m.Database {
	t.Helper()

	db, err := adapter.Decode(strings.NewReader(text))
	require.NoError(t, err)

	return db
}

// binHits collects every bin's summed range counters keyed by identity path.
func binHits(t *testing.T, db *m.Database) map[string]uint64 {
	t.Helper()

	out := make(map[string]uint64)

	for _, mod := range db.Modules {
		if mod.Covergroup == nil {
			continue
		}

		for _, inst := range mod.Covergroup.Instances {
			for _, cvp := range inst.Coverpoints {
				for _, bin := range cvp.Bins {
					hits, err := bin.Hits()
					require.NoError(t, err)

					out[mod.Name+"/"+inst.Name+"/"+cvp.Name+"/"+bin.Name] = hits
				}
			}

			for _, cross := range inst.Crosses {
				for _, cb := range cross.Bins {
					tuple, err := cb.Tuple()
					require.NoError(t, err)

					hits, err := cb.Contents.Hits()
					require.NoError(t, err)

					out[mod.Name+"/"+inst.Name+"/"+cross.Name+"/("+tuple.Key()+")"] = hits
				}
			}
		}
	}

	return out
}
