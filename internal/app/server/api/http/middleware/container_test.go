package middleware

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestContainer_GetAllAndClear(t *testing.T) {
	var calls []string
	first := func(ctx huma.Context, next func(huma.Context)) { calls = append(calls, "first"); next(ctx) }
	second := func(ctx huma.Context, next func(huma.Context)) { calls = append(calls, "second"); next(ctx) }

	c := NewContainer()
	c.Add(first).Add(second)

	mws := c.GetAllAndClear()
	assert.Len(t, mws, 2)
	assert.Empty(t, c.GetAllAndClear())

	mws[0](nil, func(ctx huma.Context) {
		mws[1](ctx, func(huma.Context) {})
	})
	assert.Equal(t, []string{"first", "second"}, calls)
}
