package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	got, err := Parse("product:sku-9")
	require.NoError(t, err)
	assert.Equal(t, Product("sku-9"), got)
	assert.Equal(t, "product:sku-9", got.String())

	for _, bad := range []string{"", "product", "product:", "vendor:1"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidTarget, bad)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Store("1").Valid())
	assert.True(t, Courier("c").Valid())
	assert.True(t, User("u").Valid())
	assert.False(t, Target{Kind: KindStore}.Valid())
	assert.False(t, Target{Kind: "order", ID: "1"}.Valid())
}
