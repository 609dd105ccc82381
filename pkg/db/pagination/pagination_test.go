package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Limit())
	assert.Equal(t, 5, Pagination{PageSize: 5}.Limit())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 1000}.Limit())
}

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "1789"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "1789", cursor.ID)

	cursor, err = DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)

	_, err = DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestPage(t *testing.T) {
	ids := []int{9, 8, 7}
	key := func(v int) string { return strconv.Itoa(v) }

	items, info, err := Page(ids, 3, key)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)

	items, info, err = Page(ids, 2, key)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 8}, items)
	assert.True(t, info.HasMore)

	cursor, err := DecodeCursor(info.NextPageToken)
	require.NoError(t, err)
	assert.Equal(t, "8", cursor.ID)
}
