package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/leaddesk/internal/crm"
)

type record map[string]any

func (r record) Field(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

func TestApply_EmptyFiltersIsIdentity(t *testing.T) {
	items := []record{{"stage": "A"}, {"stage": "B"}}
	assert.Equal(t, items, Apply(items, nil))
	assert.Equal(t, items, Apply(items, []Option{}))
}

func TestApply_ConjunctionAcrossFields(t *testing.T) {
	items := []record{
		{"stage": "A", "budget": 10},
		{"stage": "A", "budget": 20},
		{"stage": "B", "budget": 10},
	}
	opts := []Option{
		{Field: "stage", Operator: OpEqual, Value: "A"},
		{Field: "budget", Operator: OpGTE, Value: 15},
	}
	got := Apply(items, opts)
	assert.Equal(t, []record{{"stage": "A", "budget": 20}}, got)

	// AND equals the intersection of each filter applied alone.
	byStage := Apply(items, opts[:1])
	assert.Equal(t, got, Apply(byStage, opts[1:]))
}

func TestApply_ArrayFields(t *testing.T) {
	item := record{"tags": []string{"hot", "vip"}}
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"scalar contained", "hot", true},
		{"scalar missing", "cold", false},
		{"any of array", []string{"cold", "vip"}, true},
		{"none of array", []string{"cold", "warm"}, false},
		{"json decoded array", []any{"vip"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(item, []Option{{Field: "tags", Operator: OpEqual, Value: tt.value}})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_ScalarOperators(t *testing.T) {
	item := record{"name": "Asha Verma", "budget": int64(7500000), "stage": "Qualified"}
	tests := []struct {
		name string
		opt  Option
		want bool
	}{
		{"equal number normalizes kinds", Option{"budget", OpEqual, 7500000.0}, true},
		{"equal string is exact", Option{"stage", OpEqual, "qualified"}, false},
		{"contains ignores case", Option{"name", OpContains, "VERMA"}, true},
		{"contains on number fails closed", Option{"budget", OpContains, "75"}, false},
		{"gte numeric string value", Option{"budget", OpGTE, "5000000"}, true},
		{"lte", Option{"budget", OpLTE, 5000000}, false},
		{"gte on string field fails closed", Option{"name", OpGTE, 1}, false},
		{"gte non numeric value fails closed", Option{"budget", OpGTE, "lots"}, false},
		{"unknown operator fails closed", Option{"stage", Operator("!="), "Lost"}, false},
		{"unknown field fails closed", Option{"nope", OpEqual, "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(item, []Option{tt.opt}))
		})
	}
}

func TestApply_Leads(t *testing.T) {
	leads := []crm.Lead{
		{ID: 1, Name: "Asha", Stage: crm.StageGeneralEnquiry, Locations: []string{"Baner"}},
		{ID: 2, Name: "Ravi", Stage: crm.StageQualified, Locations: []string{"Wakad", "Aundh"}},
	}
	got := Apply(leads, []Option{{Field: "stage", Operator: OpEqual, Value: "Init - General Enquiry"}})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	got = Apply(leads, []Option{{Field: "locations", Operator: OpEqual, Value: []string{"Aundh"}}})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestOption_JSONRoundtripKeepsSemantics(t *testing.T) {
	opts := []Option{{Field: "tags", Operator: OpEqual, Value: []string{"vip"}}, {Field: "budget", Operator: OpGTE, Value: 10}}
	b, err := json.Marshal(opts)
	require.NoError(t, err)
	var decoded []Option
	require.NoError(t, json.Unmarshal(b, &decoded))

	item := record{"tags": []string{"vip"}, "budget": 12}
	assert.True(t, Match(item, decoded))
}

func TestOption_String(t *testing.T) {
	assert.Equal(t, "budget >= 15", Option{"budget", OpGTE, 15}.String())
	assert.Equal(t, "tags = [hot, vip]", Option{"tags", OpEqual, []any{"hot", "vip"}}.String())
	assert.Equal(t, "name contains asha", Option{"name", OpContains, "asha"}.String())
}
