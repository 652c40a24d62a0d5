package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetRequest_Validate(t *testing.T) {
	r := OffsetRequest{Page: -1, Size: 500}
	require.NoError(t, r.Validate())
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, PageMaxSize, r.Size)

	r = OffsetRequest{}
	require.NoError(t, r.Validate())
	assert.Equal(t, PageDefaultSize, r.Size)
}

func TestPaginate(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name    string
		req     OffsetRequest
		want    []int
		hasMore bool
	}{
		{name: "first page", req: OffsetRequest{Page: 1, Size: 2}, want: []int{1, 2}, hasMore: true},
		{name: "last partial page", req: OffsetRequest{Page: 3, Size: 2}, want: []int{5}},
		{name: "past the end", req: OffsetRequest{Page: 4, Size: 2}, want: []int{}},
		{name: "everything", req: OffsetRequest{Page: 1, Size: 10}, want: []int{1, 2, 3, 4, 5}},
		{name: "huge page", req: OffsetRequest{Page: math.MaxInt64, Size: 100}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *OffsetResult[int]
			require.NotPanics(t, func() { got = Paginate(all, tt.req) })
			assert.Equal(t, tt.want, got.Items)
			assert.Equal(t, int64(5), got.Total)
			assert.Equal(t, tt.hasMore, got.HasMore)
		})
	}
}

func TestOffsetRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, OffsetRequest{Page: 1, Size: 20}.Offset())
	assert.Equal(t, 40, OffsetRequest{Page: 3, Size: 20}.Offset())
	assert.Equal(t, math.MaxInt, OffsetRequest{Page: math.MaxInt64, Size: 100}.Offset())
	assert.Equal(t, math.MaxInt, OffsetRequest{Page: math.MaxInt/2 + 2, Size: 2}.Offset())

	assert.NotPanics(t, func() {
		res := Paginate([]int{1, 2, 3}, OffsetRequest{Page: math.MaxInt64, Size: 100})
		assert.Empty(t, res.Items)
		assert.False(t, res.HasMore)
	})
}
