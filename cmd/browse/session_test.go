package main

import (
	"apartmenthub/listing"
	"apartmenthub/models"
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBrowser struct {
	calls []string
}

func (b *recordingBrowser) SetSearch(text string) { b.calls = append(b.calls, "search:"+text) }
func (b *recordingBrowser) SetProjectFilter(project string) { b.calls = append(b.calls, "project:"+project) }
func (b *recordingBrowser) SetPage(page int) { b.calls = append(b.calls, "page:"+strconv.Itoa(page)) }
func (b *recordingBrowser) LoadMore() { b.calls = append(b.calls, "more") }
func (b *recordingBrowser) Retry() { b.calls = append(b.calls, "retry") }
func (b *recordingBrowser) URL() string { return "/apartments?page=2" }

func TestSessionRun(t *testing.T) {
	b := &recordingBrowser{}
	var out bytes.Buffer
	in := strings.NewReader("s garden view\np Skyline Towers\np\ng 3\nm\nr\nu\nq\ns ignored\n")

	err := newSession(b, in, &out).run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"search:garden view",
		"project:Skyline Towers",
		"project:" + listing.AllProjects,
		"page:3",
		"more",
		"retry",
	}, b.calls)
	assert.Contains(t, out.String(), "/apartments?page=2")
}

func TestSessionExec_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "unknown command", line: "x"},
		{name: "page not a number", line: "g two"},
		{name: "page below one", line: "g 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &recordingBrowser{}
			err := newSession(b, strings.NewReader(""), &bytes.Buffer{}).exec(tt.line)
			assert.Error(t, err)
			assert.Empty(t, b.calls)
		})
	}
}

func TestPrintSnapshot(t *testing.T) {
	total := int64(12)
	tests := []struct {
		name string
		snap listing.Snapshot
		want []string
	}{
		{
			name: "loading",
			snap: listing.Snapshot{Filters: listing.DefaultFilters(), Loading: true},
			want: []string{"[page 1] loading..."},
		},
		{
			name: "error",
			snap: listing.Snapshot{Filters: listing.DefaultFilters(), Err: errors.New("boom")},
			want: []string{"failed: boom"},
		},
		{
			name: "items",
			snap: listing.Snapshot{
				Filters: listing.Filters{Search: "view", Project: "Skyline Towers", Page: 2},
				Items: []models.Apartment{{
					ID:         7,
					UnitNumber: "B-201",
					UnitName:   "Penthouse B-201",
					Project:    &models.Project{Name: "Skyline Towers"},
					Price:      models.MustAmount("300000"),
					Status:     models.StatusAvailable,
				}},
				Total:   &total,
				HasMore: true,
			},
			want: []string{`[page 2 search="view" project="Skyline Towers"] 1 of 12 apartments`, "B-201", "300000.00", "m for more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printSnapshot(&out, tt.snap)
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}
