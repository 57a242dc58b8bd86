package components

import (
	"context"
	"encoding/json"
	"html"
	"regexp"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestViewBody(t *testing.T) {
	tests := []struct {
		name    string
		view    viewer.View
		want    []string
		notWant []string
	}{
		{
			name:    "loading",
			view:    viewer.LoadingView{},
			want:    []string{"Loading..."},
			notWant: []string{"<table", "No data available yet"},
		},
		{
			name:    "empty",
			view:    viewer.EmptyView{},
			want:    []string{"No data available yet"},
			notWant: []string{"<table", "Loading..."},
		},
		{
			name: "populated",
			view: viewer.PopulatedView{Table: viewer.Table{
				Headers: []string{"name", "phone"},
				Rows:    [][]string{{"Acme", "+1"}, {"Bolt", ""}},
				Total:   2,
			}},
			want: []string{
				"<th>name</th><th>phone</th>",
				"<tr><td>Acme</td><td>+1</td></tr>",
				"<tr><td>Bolt</td><td></td></tr>",
			},
			notWant: []string{"Loading...", "No data available yet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, ViewBody(tt.view))
			for _, want := range tt.want {
				assert.Contains(t, body, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, body, notWant)
			}
		})
	}
}

func TestTable_EscapesCells(t *testing.T) {
	body := render(t, Table(viewer.Table{
		Headers: []string{"<b>"},
		Rows:    [][]string{{`<script>alert("x")</script>`}},
	}))

	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "<b>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestViewer_Controls(t *testing.T) {
	snap := viewer.Snapshot{ViewState: viewer.ViewState{
		Dataset: core.DatasetWebsite,
		Rows:    []core.Row{core.NewRow("a", "1"), core.NewRow("a", "2"), core.NewRow("a", "3")},
		RowCap:  100,
	}, Headers: []string{"a"}}

	body := render(t, Viewer(ViewerData{
		Snapshot: snap,
		Datasets: core.KnownDatasets(),
		Caps:     []int{50, 100},
	}))

	assert.Contains(t, body, `id="viewer"`)
	assert.Contains(t, body, `<option value="website" selected>Website Dataset</option>`)
	assert.Contains(t, body, `<option value="merged">Combined Dataset</option>`)
	assert.Contains(t, body, `class="cap active" data-on:click="@post(&#39;/viewer/cap/100&#39;)"`)
	assert.Contains(t, body, `class="cap" data-on:click="@post(&#39;/viewer/cap/50&#39;)"`)
	assert.Contains(t, body, "@post('/viewer/shuffle')")
	assert.Contains(t, body, "Showing 3 of 3 rows")
	assert.Equal(t, 3, strings.Count(body, "<td>"))
}

func TestPage(t *testing.T) {
	data := ViewerData{
		Snapshot: viewer.Snapshot{ViewState: viewer.ViewState{Dataset: core.DatasetGoogle, Loading: true, RowCap: 50}},
		Datasets: core.KnownDatasets(),
		Caps:     []int{50},
	}

	body := render(t, Page("Data Viewer", true, data))

	assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
	assert.Contains(t, body, "<title>Data Viewer - csvview</title>")
	assert.Contains(t, body, `data-init="@get('/viewer/updates')"`)
	assert.Contains(t, body, "/static/app.css")
	assert.Contains(t, body, "@get('/reload'")
	assert.Contains(t, body, "Loading...")

	body = render(t, Page("Data Viewer", false, data))
	assert.NotContains(t, body, "@get('/reload'")
}

var signalsAttr = regexp.MustCompile(`data-signals="([^"]*)"`)

func TestPage_SignalsAreJSON(t *testing.T) {
	tests := []struct {
		name    string
		dataset core.DatasetID
	}{
		{"known dataset", core.DatasetMerged},
		{"control characters", core.DatasetID("a\x01b\x7fc")},
		{"quotes and backslash", core.DatasetID(`say "hi" \ bye`)},
		{"markup", core.DatasetID(`"><script>alert(1)</script>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, Page("Data Viewer", false, ViewerData{
				Snapshot: viewer.Snapshot{ViewState: viewer.ViewState{Dataset: tt.dataset, Loading: true, RowCap: 50}},
			}))
			assert.NotContains(t, body, "<script>alert")

			m := signalsAttr.FindStringSubmatch(body)
			require.Len(t, m, 2)
			raw := html.UnescapeString(m[1])
			require.True(t, json.Valid([]byte(raw)), "signals %q are not JSON", raw)

			var got map[string]string
			require.NoError(t, json.Unmarshal([]byte(raw), &got))
			assert.Equal(t, map[string]string{"dataset": tt.dataset.String()}, got)
		})
	}
}
