package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/propconnect/propconnect/internal/domain"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
)

func TestAssertOwner(t *testing.T) {
	tests := []struct {
		name      string
		owner     string
		principal string
		wantErr   bool
	}{
		{"owner", "u-1", "u-1", false},
		{"other user", "u-1", "u-2", true},
		{"anonymous", "u-1", "", true},
		{"both empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertOwner(tt.owner, tt.principal)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrNotOwner)
			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	}
}
