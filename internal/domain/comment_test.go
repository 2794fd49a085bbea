package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComment(t *testing.T) {
	t.Parallel()

	c, err := NewComment(uuid.New(), uuid.New(), "  looks good  ", testNow)
	require.NoError(t, err)
	assert.Equal(t, "looks good", c.Content)

	_, err = NewComment(uuid.New(), uuid.New(), " \n\t ", testNow)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewComment(uuid.New(), uuid.New(), strings.Repeat("a", MaxCommentLength+1), testNow)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
