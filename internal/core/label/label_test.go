package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_Order(t *testing.T) {
	assert.Equal(t, []Category{Reviewing, Passed, Bounceback, AutoReply}, All())
	assert.Equal(t, []string{"Reviewing", "Passed", "Bounceback", "Auto-Reply"}, Strings())
}

func TestAll_ReturnsCopy(t *testing.T) {
	got := All()
	got[0] = "Mutated"
	assert.Equal(t, Reviewing, All()[0])
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("Auto-Reply"))
	assert.True(t, Valid("Passed"))
	assert.False(t, Valid("passed"), "Valid is exact")
	assert.False(t, Valid(""))
	assert.False(t, Valid("Spam"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "Reviewing", want: Reviewing},
		{in: "  bounceback ", want: Bounceback},
		{in: "AUTO-REPLY", want: AutoReply},
		{in: "autoreply", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "valid: Reviewing, Passed, Bounceback, Auto-Reply")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
