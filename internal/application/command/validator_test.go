package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shared"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestValidator(t *testing.T) {
	v := NewValidator()

	type transfer struct {
		Source string `json:"sourceItemId" validate:"required"`
		Dest   string `json:"destinationItemId" validate:"required,nefield=Source"`
		Note   string `json:"-" validate:"max=3"`
	}

	assert.NoError(t, v.Validate(transfer{Source: "a", Dest: "b"}))

	err := v.Validate(transfer{Source: "a", Dest: "a", Note: "toolong"})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Must differ from Source", ve.Fields["destinationItemId"])
	assert.Equal(t, "Must be at most 3 characters", ve.Fields["Note"])
	assert.True(t, shared.IsValidationError(err))
	assert.False(t, shared.IsRetryable(err))
}
