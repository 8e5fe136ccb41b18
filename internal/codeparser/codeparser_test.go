package codeparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glasscom/catalog-builder/internal/types"
)

func TestClassic(t *testing.T) {
	tests := []struct {
		code    string
		parent  string
		variant string
	}{
		{"PB261 CR", "PB261", "CR"},
		{"pb261_cr", "PB261", "CR"},
		{"  PB261   CR  OLC ", "PB261", "CR OLC"},
		{"MA12 DX CR", "MA12DX", "CR"},
		{"MA12_SX", "MA12SX", ""},
		{"SMF40 CR", "SMF", "40 CR"},
		{"SMF40", "SMF", "40"},
		{"SMFX CR", "SMFX", "CR"},
		{"SMF", "SMF", ""},
		{"PB261", "PB261", ""},
		{"", "", ""},
		{"   ", "", ""},
		{"_ _", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			parent, variant := Classic(tt.code)
			assert.Equal(t, tt.parent, parent)
			assert.Equal(t, tt.variant, variant)
		})
	}
}

func TestMorsetti(t *testing.T) {
	tests := []struct {
		code    string
		parent  string
		variant string
	}{
		{"MB2/17.52", "MB2", "17.52"},
		{"mb2 / 17.52/x", "MB2", "17.52/X"},
		{"MB2", "MB2", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			parent, variant := Morsetti(tt.code)
			assert.Equal(t, tt.parent, parent)
			assert.Equal(t, tt.variant, variant)
		})
	}
}

func TestTubi(t *testing.T) {
	tests := []struct {
		code    string
		parent  string
		variant string
	}{
		{"TUCO-01.304", "TUCO", "01.304"},
		{"TUCO", "TUCO", ""},
		{"tuco-01-2", "TUCO", "01-2"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			parent, variant := Tubi(tt.code)
			assert.Equal(t, tt.parent, parent)
			assert.Equal(t, tt.variant, variant)
		})
	}
}

func TestNoSeparatorCodesAreAllParent(t *testing.T) {
	for _, code := range []string{"abc", "PB261", "x9 y", "12.5"} {
		t.Run(code, func(t *testing.T) {
			for _, split := range []func(string) (string, string){Morsetti, Tubi} {
				parent, variant := split(code)
				assert.Equal(t, strings.ToUpper(code), parent)
				assert.Equal(t, "", variant)
			}
		})
	}
}

func TestMatchPrefix(t *testing.T) {
	tests := []struct {
		code    string
		parent  string
		variant string
		ok      bool
	}{
		{"CERN40CR", "CERN40", "CR", true},
		{"cern40 cs", "CERN40", "CS", true},
		{"CERN40", "cern40", "", true},
		{"CERN4", "CERN40", "", false},
		{"XCERN40CR", "CERN40", "", false},
		{"", "CERN40", "", false},
		{"CERN40CR", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.parent, func(t *testing.T) {
			variant, ok := MatchPrefix(tt.code, tt.parent)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.variant, variant)
		})
	}
}

func TestForMode(t *testing.T) {
	p, v := ForMode(types.ModeMorsetti).Split("MB2/17.52")
	assert.Equal(t, "MB2", p)
	assert.Equal(t, "17.52", v)

	p, v = ForMode(types.ModeTubi).Split("TUCO-01.304")
	assert.Equal(t, "TUCO", p)
	assert.Equal(t, "01.304", v)

	p, v = ForMode(types.ModeClassic).Split("PB261 CR")
	assert.Equal(t, "PB261", p)
	assert.Equal(t, "CR", v)
}
