package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	keys := ParseSort("-mrr,name")
	assert.Equal(t, []SortKey{{Field: "mrr", Descending: true}, {Field: "name", Descending: false}}, keys)
}

func TestParseSortDotSuffix(t *testing.T) {
	keys := ParseSort("mrr.desc,name.asc")
	assert.Equal(t, []SortKey{{Field: "mrr", Descending: true}, {Field: "name", Descending: false}}, keys)
}

func TestParseSortEmpty(t *testing.T) {
	assert.Nil(t, ParseSort(""))
}

func TestCanonicalSort(t *testing.T) {
	keys := ParseSort("-mrr,name")
	assert.Equal(t, "mrr.desc,name.asc", CanonicalSort(keys))
}

func TestSortRoundTrip(t *testing.T) {
	for _, raw := range []string{"-mrr,name", "mrr.desc,name.asc", "a,b.desc,-c"} {
		keys := ParseSort(raw)
		assert.Equal(t, keys, ParseSort(CanonicalSort(keys)), "round trip of %q", raw)
	}
}
