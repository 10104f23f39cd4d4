package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/remui-admin-api/internal/models"
)

// terminalView prints controller output as plain text.
type terminalView struct {
	mu          sync.Mutex
	out         io.Writer
	label       string
	suggestions []models.Record
}

func newTerminalView(out io.Writer, label string) *terminalView {
	return &terminalView{out: out, label: label}
}

func (v *terminalView) suggestion(i int) (models.Record, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.suggestions) {
		return nil, false
	}
	return v.suggestions[i], true
}

func (v *terminalView) ShowSuggestions(text string, items []models.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.suggestions = items
	if len(items) == 0 {
		fmt.Fprintf(v.out, "no suggestions for %q\n", text)
		return
	}
	fmt.Fprintf(v.out, "suggestions for %q:\n", text)
	for i, item := range items {
		fmt.Fprintf(v.out, "  %d. %s (id %d)\n", i+1, item.String(v.label), item.ID())
	}
}

func (v *terminalView) ShowSuggestionError(text string, err error) {
	fmt.Fprintf(v.out, "suggestions for %q failed: %v\n", text, err)
}

func (v *terminalView) HideSuggestions() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.suggestions = nil
}

func (v *terminalView) SetTableVisible(bool) {}

func (v *terminalView) RenderTable(spec models.SearchSpec, page *models.PageResult) {
	fmt.Fprintf(v.out, "page %d/%d, %d records (search %q)\n", page.Page+1, maxInt(page.TotalPages, 1), page.TotalCount, spec.Query)
	if len(page.Items) == 0 {
		fmt.Fprintln(v.out, "  no records found")
		return
	}
	keys := columns(page.Items[0])
	fmt.Fprintf(v.out, "  %s\n", strings.Join(keys, " | "))
	for _, item := range page.Items {
		cells := make([]string, len(keys))
		for i, k := range keys {
			cells[i] = item.String(k)
		}
		fmt.Fprintf(v.out, "  %s\n", strings.Join(cells, " | "))
	}
}

func (v *terminalView) ShowTableError(err error) {
	fmt.Fprintf(v.out, "refresh failed, showing previous table: %v\n", err)
}

func (v *terminalView) SetSearchText(text string) {
	fmt.Fprintf(v.out, "search box: %q\n", text)
}

func (v *terminalView) Navigate(spec models.SearchSpec) {
	fmt.Fprintf(v.out, "navigate: %+v\n", spec)
}

// columns puts id first and the rest alphabetically.
func columns(r models.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := r["id"]; ok {
		keys = append([]string{"id"}, keys...)
	}
	return keys
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
