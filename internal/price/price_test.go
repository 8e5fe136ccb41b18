package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"comma decimal with thousands dot", "1.234,56", "1234.56"},
		{"dot decimal", "1234.56", "1234.56"},
		{"comma decimal", "1234,56", "1234.56"},
		{"integer", "12", "12.00"},
		{"currency and spaces", "€ 1 234,5", "1234.50"},
		{"rounding", "2,499", "2.50"},
		{"negative", "-3,2", "-3.20"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"letters", "abc", ""},
		{"two commas keep the leading number", "1,2,3", "1.20"},
		{"price range keeps the first price", "12.00 - 15.00", "12.00"},
		{"half rounds up", "0,125", "0.13"},
		{"half rounds up above one", "12,125", "12.13"},
		{"negative half rounds away from zero", "-12,125", "-12.13"},
		{"binary value below the half", "1.005", "1.00"},
		{"negative zero", "-0,00", "0.00"},
		{"negative rounding to zero", "-0,001", "0.00"},
		{"leading dot", ".5", "0.50"},
		{"trailing text after number", "12,5 - n/d", "12.50"},
		{"lone separator", ",", ""},
		{"lone minus", "-", ""},
		{"minus after number only", "--5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_LocalesAgree(t *testing.T) {
	assert.Equal(t, Normalize("1.234,56"), Normalize("1234.56"))
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"0", true},
		{"0,00", true},
		{"0.00", true},
		{"0.01", false},
		{"-0,00", true},
		{"0,004", true},
		{"", false},
		{"n/d", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsZero(tt.value))
		})
	}
}
