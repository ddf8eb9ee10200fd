package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCPF(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
		want bool
	}{
		{"valid bare digits", "52998224725", true},
		{"valid with punctuation", "529.982.247-25", true},
		{"wrong first check digit", "52998224735", false},
		{"wrong second check digit", "52998224724", false},
		{"all digits equal", "11111111111", false},
		{"all zeros", "00000000000", false},
		{"too short", "5299822472", false},
		{"too long", "529982247251", false},
		{"empty", "", false},
		{"letters only", "abcdefghijk", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCPF(tt.cpf))
		})
	}
}
