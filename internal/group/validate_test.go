package group

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		maxLen  int
		wantErr bool
	}{
		{name: "ok", input: "Acme Widgets (v2)", maxLen: 255},
		{name: "empty", input: "", maxLen: 255, wantErr: true},
		{name: "leading space", input: " Acme", maxLen: 255, wantErr: true},
		{name: "trailing space", input: "Acme ", maxLen: 255, wantErr: true},
		{name: "disallowed char", input: "Acme/Widgets", maxLen: 255, wantErr: true},
		{name: "too long", input: strings.Repeat("a", 10), maxLen: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input, tt.maxLen)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
