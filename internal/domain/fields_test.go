package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldSet(t *testing.T) {
	t.Parallel()

	statusOnly := NewFieldSet(FieldStatus)
	requested := NewFieldSet(FieldStatus, FieldTitle)

	assert.True(t, AllTaskFields.Covers(requested))
	assert.False(t, statusOnly.Covers(requested))
	assert.True(t, statusOnly.Covers(NewFieldSet(FieldStatus)))
	assert.True(t, statusOnly.Covers(FieldSet(0)))

	assert.Equal(t, []string{"title"}, requested.Minus(statusOnly).Names())
	assert.Len(t, AllTaskFields.Names(), 6)
	assert.Equal(t, "assigned_to_id", FieldAssignee.String())
}
