// Package render prints reports as terminal tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/n0roo/content-locator/internal/report"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	mutedColor   = lipgloss.Color("#6B7280")
	warningColor = lipgloss.Color("#F59E0B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	groupStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)
)

// Headers are the table columns.
var Headers = []string{"Block Name / Page Title", "Count", "Post Type", "Status", "Links"}

// Options selects what Write prints.
type Options struct {
	// Bucket limits output to one bucket. Empty prints all six.
	Bucket report.BucketName
	// Collapsed prints only the per-key totals.
	Collapsed bool
}

// EmptyMessage is printed for a bucket without groups.
func EmptyMessage(b report.Bucket) string {
	return fmt.Sprintf("No %s found.", b.Title)
}

// Write renders r to w.
func Write(w io.Writer, r *report.Report, opts Options) error {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Content Locator"))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %d documents scanned, %s",
		r.Documents, r.GeneratedAt.Format("2006-01-02 15:04:05"))))
	sb.WriteString("\n\n")

	for _, b := range r.Buckets {
		if opts.Bucket != "" && b.Name != opts.Bucket {
			continue
		}
		sb.WriteString(Bucket(b, opts.Collapsed))
		sb.WriteString("\n\n")
	}

	for _, warn := range r.Warnings {
		sb.WriteString(warningStyle.Render("⚠ " + warn))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Bucket renders one bucket with its heading.
func Bucket(b report.Bucket, collapsed bool) string {
	heading := titleStyle.Render(fmt.Sprintf("%s (%d)", b.Title, b.Total()))
	if len(b.Groups) == 0 {
		return heading + "\n" + mutedStyle.Render(EmptyMessage(b))
	}

	var rows [][]string
	groupRows := make(map[int]bool)
	for _, g := range b.Groups {
		groupRows[len(rows)] = true
		rows = append(rows, []string{g.Key, strconv.Itoa(g.Total), "", "", ""})
		if collapsed {
			continue
		}
		for _, e := range g.Entries {
			rows = append(rows, []string{
				"  " + e.Title,
				strconv.Itoa(e.Count),
				e.Type,
				e.Status,
				links(e.ViewURL, e.EditURL),
			})
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case groupRows[row]:
				return groupStyle
			default:
				return cellStyle
			}
		})

	return heading + "\n" + t.String()
}

func links(view, edit string) string {
	switch {
	case view == "" && edit == "":
		return ""
	case edit == "":
		return view
	default:
		return view + " | " + edit
	}
}
