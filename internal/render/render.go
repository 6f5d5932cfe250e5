// Package render draws conversations as chat bubbles in a terminal. Sent
// messages sit on the right edge, received ones on the left; time headers
// and sender names appear only where the grouping rules show them.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/flemzord/chatlist/internal/conversation"
	"github.com/flemzord/chatlist/pkg/message"
)

const (
	defaultWidth = 60
	minWidth     = 20
	avatarGutter = "● "
)

// Options configures a Renderer.
type Options struct {
	// Width is the total line width. Defaults to 60.
	Width int
}

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	header   lipgloss.Style
	name     lipgloss.Style
	sent     lipgloss.Style
	received lipgloss.Style
	image    lipgloss.Style
}

// Renderer turns rows into a string. Colors follow the capabilities of the
// writer it was created for; a non-terminal writer gets plain text.
type Renderer struct {
	width  int
	styles styles
}

// New creates a renderer whose color profile matches w.
func New(w io.Writer, opts Options) *Renderer {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	width = max(width, minWidth)

	lg := lipgloss.NewRenderer(w)
	bubble := lg.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return &Renderer{
		width: width,
		styles: styles{
			title:    lg.NewStyle().Bold(true),
			muted:    lg.NewStyle().Foreground(lipgloss.Color("245")),
			header:   lg.NewStyle().Faint(true).Width(width).Align(lipgloss.Center),
			name:     lg.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			sent:     bubble.BorderForeground(lipgloss.Color("42")),
			received: bubble.BorderForeground(lipgloss.Color("245")),
			image:    lg.NewStyle().Italic(true),
		},
	}
}

// Conversation renders a titled list.
func (r *Renderer) Conversation(id string, list *conversation.List) string {
	rows := list.Rows()
	title := r.styles.title.Render(id)
	count := r.styles.muted.Render(fmt.Sprintf("%d messages", len(rows)))
	gap := max(1, r.width-lipgloss.Width(title)-lipgloss.Width(count))
	head := title + strings.Repeat(" ", gap) + count

	return lipgloss.JoinVertical(lipgloss.Left, head, r.Rows(rows, list.ShowProfileImages()))
}

// Rows renders rows in order. With avatars set, received rows get a gutter
// that marks the first row of each sender run.
func (r *Renderer) Rows(rows []conversation.Row, avatars bool) string {
	if len(rows) == 0 {
		return r.styles.muted.Render("No messages")
	}
	blocks := make([]string, 0, len(rows)*2)
	for _, row := range rows {
		rec := row.Record
		if rec.TimeVisible {
			label := rec.TimeLabel
			if label == "" {
				label = rec.TimestampRaw
			}
			blocks = append(blocks, r.styles.header.Render(label))
		}
		blocks = append(blocks, r.row(row, avatars))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (r *Renderer) row(row conversation.Row, avatars bool) string {
	rec := row.Record
	sent := row.Kind.IsSent()

	style := r.styles.received
	if sent {
		style = r.styles.sent
	}
	// Bubbles take at most two thirds of the line.
	maxBody := r.width*2/3 - 4
	body := r.body(rec, row.Kind)
	if lipgloss.Width(body) > maxBody {
		style = style.Width(maxBody + 2)
	}
	bubble := style.Render(body)

	if sent {
		return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, bubble)
	}

	if rec.NameVisible {
		bubble = lipgloss.JoinVertical(lipgloss.Left, r.styles.name.Render(rec.SenderName), bubble)
	}
	if avatars {
		gutter := strings.Repeat(" ", lipgloss.Width(avatarGutter))
		if rec.NameVisible {
			gutter = avatarGutter
		}
		bubble = lipgloss.JoinHorizontal(lipgloss.Top, gutter, bubble)
	}
	return bubble
}

func (r *Renderer) body(rec message.Record, kind message.Kind) string {
	if kind.IsImage() {
		return r.styles.image.Render(fmt.Sprintf("[image, %s]", humanize.Bytes(uint64(len(rec.Image())))))
	}
	return rec.Text()
}
