package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvview/internal/testutil"
	"github.com/leapstack-labs/csvview/pkg/core"
)

func TestBuildTable(t *testing.T) {
	rows := []core.Row{
		core.NewRow("name", "Acme", "phone", "+1"),
		core.NewRow("name", "Bolt"),
		core.NewRow("name", "Cobalt", "phone", "+3"),
	}

	table := BuildTable(rows, []string{"name", "phone"}, 2)

	assert.Equal(t, []string{"name", "phone"}, table.Headers)
	assert.Equal(t, [][]string{{"Acme", "+1"}, {"Bolt", ""}}, table.Rows)
	assert.Equal(t, 3, table.Total)
}

func TestSnapshotView(t *testing.T) {
	tests := []struct {
		name  string
		state ViewState
		check func(t *testing.T, v View)
	}{
		{
			name:  "loading wins over rows",
			state: ViewState{Loading: true, Rows: testutil.Rows(3), RowCap: 10},
			check: func(t *testing.T, v View) {
				assert.IsType(t, LoadingView{}, v)
			},
		},
		{
			name:  "empty when not loading and no rows",
			state: ViewState{Rows: []core.Row{}, RowCap: 10},
			check: func(t *testing.T, v View) {
				assert.IsType(t, EmptyView{}, v)
			},
		},
		{
			name:  "populated respects the cap",
			state: ViewState{Rows: testutil.Rows(5), RowCap: 2},
			check: func(t *testing.T, v View) {
				p, ok := v.(PopulatedView)
				require.True(t, ok)
				assert.Len(t, p.Table.Rows, 2)
				assert.Equal(t, 5, p.Table.Total)
			},
		},
		{
			name:  "cap larger than rows has no effect",
			state: ViewState{Dataset: core.DatasetWebsite, Rows: testutil.Rows(3), RowCap: 1000},
			check: func(t *testing.T, v View) {
				p, ok := v.(PopulatedView)
				require.True(t, ok)
				assert.Len(t, p.Table.Rows, 3)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{ViewState: tt.state, Headers: Headers(tt.state.Dataset, tt.state.Rows)}
			tt.check(t, snap.View())
		})
	}
}
