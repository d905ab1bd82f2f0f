package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// CommonModel tracks the terminal size. Zero means the size is not known yet.
type CommonModel struct {
	Width  int
	Height int
}

func (c *CommonModel) SetSize(width, height int) {
	c.Width = width
	c.Height = height
}

// Columns returns how many columns of the given width fit side by side,
// between 1 and limit.
func (c CommonModel) Columns(width, limit int) int {
	if c.Width <= 0 || width <= 0 {
		return limit
	}

	return min(max(c.Width/width, 1), limit)
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
