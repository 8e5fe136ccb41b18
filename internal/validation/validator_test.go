package validation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/types"
)

func rules(issues []Issue) []Rule {
	out := make([]Rule, len(issues))
	for i, issue := range issues {
		out[i] = issue.Rule
	}
	return out
}

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want []Rule
	}{
		{
			name: "clean classic row",
			item: Item{Row: model.Row{Mode: types.ModeClassic, Code: "PB261", Title: "Pomolo", Slots: []model.Slot{
				{Code: "PB261 CR", Price: "12.50", Finish: "Cromo Lucido"},
			}}},
			want: []Rule{},
		},
		{
			name: "placeholder",
			item: Item{Row: model.Ghost("NOPE", types.ModeClassic)},
			want: []Rule{RuleNotFound},
		},
		{
			name: "price problems and finish",
			item: Item{Row: model.Row{Mode: types.ModeClassic, Code: "PB261", Title: "Pomolo", Slots: []model.Slot{
				{Code: "PB261 CR", Price: "", Finish: "Cromo Lucido"},
				{Code: "PB261 ZZ", Price: "0.00"},
				{},
			}}},
			want: []Rule{RuleBlankPrice, RuleZeroPrice, RuleUnresolvedFinish},
		},
		{
			name: "hand-edited finish label",
			item: Item{Row: model.Row{Mode: types.ModeClassic, Code: "PB261", Title: "Pomolo", Slots: []model.Slot{
				{Code: "PB261 CR", Price: "12.50", Finish: "cromo lucido"},
				{Code: "PB261 XX", Price: "12.50", Finish: "Oro Rosa"},
			}}},
			want: []Rule{RuleUnknownFinish},
		},
		{
			name: "dynamic rows skip finish",
			item: Item{Row: model.Row{Mode: types.ModeTubi, Code: "TUCO", Title: "Tubo", Slots: []model.Slot{
				{Code: "TUCO-1", Price: "1.00", Variant: "1"},
			}}},
			want: []Rule{},
		},
		{
			name: "truncated without title",
			item: Item{Row: model.Row{Mode: types.ModeClassic, Code: "X"}, Dropped: 2},
			want: []Rule{RuleTruncated, RuleMissingTitle},
		},
	}

	v := NewValidator(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules(v.ValidateRow(tt.item)))
		})
	}
}

func TestValidate_Counts(t *testing.T) {
	items := []Item{
		{Row: model.Ghost("NOPE", types.ModeClassic)},
		{Row: model.Row{Mode: types.ModeClassic, Code: "X", Title: "x"}, Dropped: 1},
	}

	result := NewValidator(Options{}).Validate(items)
	assert.False(t, result.IsValid)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 1, result.WarningCount)
	assert.Equal(t, 2, result.RowsValidated)
	assert.Equal(t, map[Rule]int{RuleNotFound: 1, RuleTruncated: 1}, CountByRule(result.Issues))

	warningsOnly := NewValidator(Options{}).Validate(items[:1])
	assert.True(t, warningsOnly.IsValid)

	strict := NewValidator(Options{TreatWarningsAsErrors: true}).Validate(items[:1])
	assert.False(t, strict.IsValid)
}

func TestValidate_SkipFinishCheck(t *testing.T) {
	item := Item{Row: model.Row{Mode: types.ModeSenzaSeparatore, Code: "CERN40", Title: "x", Slots: []model.Slot{
		{Code: "CERN40XY", Price: "1.00"},
	}}}

	assert.Len(t, NewValidator(Options{}).ValidateRow(item), 1)
	assert.Empty(t, NewValidator(Options{SkipFinishCheck: true}).ValidateRow(item))
}

func TestIssueString(t *testing.T) {
	issue := Issue{Severity: SeverityWarning, Code: "PB261", Slot: 2, Message: "variant PB261 ZZ has a zero price"}
	assert.Equal(t, "[WARNING] PB261 slot 2: variant PB261 ZZ has a zero price", issue.String())
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 19, 14, 30, 22, 0, time.UTC)

	path, err := WriteErrorLog(Result{}, dir, now)
	require.NoError(t, err)
	assert.Empty(t, path, "no issues, no file")

	result := NewValidator(Options{}).Validate([]Item{{Row: model.Ghost("NOPE", types.ModeClassic)}})
	path, err = WriteErrorLog(result, dir, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "error_log_20261019_143022.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rule:       not_found")
	assert.Contains(t, string(data), "Code:       NOPE")
}
