package netsync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netvista-io/netsync/pkg/netsync"
)

func TestQueryParams_ToValues(t *testing.T) {
	t.Parallel()

	params := netsync.NewQueryParams().
		WithPage(2).
		WithPageSize(25).
		WithOrdering("-name").
		WithSearch("core").
		WithIsActive(true).
		WithFilter("server_type", "gns3", "snmp")

	values := params.ToValues()
	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "25", values.Get("page_size"))
	assert.Equal(t, "-name", values.Get("ordering"))
	assert.Equal(t, "core", values.Get("search"))
	assert.Equal(t, "true", values.Get("is_active"))
	assert.Equal(t, "gns3,snmp", values.Get("server_type"))
}

func TestQueryParams_ToValues_Empty(t *testing.T) {
	t.Parallel()

	values := netsync.NewQueryParams().ToValues()
	assert.Empty(t, values)
}

func TestQueryParams_CanonicalMap(t *testing.T) {
	t.Parallel()

	t.Run("identical params produce identical maps", func(t *testing.T) {
		t.Parallel()

		first := netsync.NewQueryParams().WithPage(1).WithSearch("edge").CanonicalMap()
		second := netsync.NewQueryParams().WithSearch("edge").WithPage(1).CanonicalMap()
		assert.Equal(t, first, second)
	})

	t.Run("nil params", func(t *testing.T) {
		t.Parallel()

		var params *netsync.QueryParams
		assert.Nil(t, params.CanonicalMap())
	})

	t.Run("empty params", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, netsync.NewQueryParams().CanonicalMap())
	})
}
