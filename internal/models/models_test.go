package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: RoleAdmin},
		{in: "user", want: RoleUser},
		{in: "  Admin ", want: RoleAdmin},
		{in: "USER", want: RoleUser},
		{in: "owner", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentity_Name(t *testing.T) {
	assert.Equal(t, "Alice", Identity{UID: "u1", Email: "a@corp.test", DisplayName: "Alice"}.Name())
	assert.Equal(t, "a@corp.test", Identity{UID: "u1", Email: "a@corp.test"}.Name())
	assert.Equal(t, "User", Identity{UID: "u1"}.Name())
}
