package ui

import (
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssh-vom/mangashelf/internal/cover"
)

const coverCellAspectRatio = 0.5

func listHeight(height int) int {
	if height <= 10 {
		return height
	}

	return height - 8
}

func coverRenderSize(panelWidth int, imageWidth, imageHeight int) (int, int) {
	cols := panelWidth - 2
	if cols < 12 {
		cols = 12
	}

	rows := 12
	if imageWidth > 0 && imageHeight > 0 {
		ratio := float64(imageHeight) / float64(imageWidth)
		rows = int(math.Round(float64(cols) * ratio * coverCellAspectRatio))
	}

	return cols, min(max(rows, 6), 24)
}

// coverPlaceholder reserves the cells kitty draws over so lipgloss lays out
// the rest of the view around the image.
func coverPlaceholder(rows, cols int) string {
	if rows <= 0 || cols <= 0 {
		return ""
	}

	line := strings.Repeat(" ", cols)
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func coverPanelWidth(totalWidth int) int {
	if totalWidth <= 40 {
		return totalWidth
	}

	panelWidth := max(totalWidth/3, 28)
	return min(panelWidth, totalWidth-20)
}

func resultsListWidth(totalWidth int) int {
	if totalWidth < 80 {
		return max(totalWidth-4, 20)
	}
	return max(totalWidth-coverPanelWidth(totalWidth)-2, 20)
}

func supportsKittyGraphics() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "ghostty") || strings.Contains(term, "kitty")
}

func (model model) coverPanel(id, title, uri string, width int) string {
	width = max(width, 20)
	// Every graphics capable render starts by deleting the previous placement.
	render := func(lines ...string) string {
		if model.supportsGraphics {
			lines[0] = cover.ClearKitty() + lines[0]
		}
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	if !model.supportsGraphics {
		return render(secondaryStyle.Render("Terminal image rendering unavailable."))
	}
	if id == "" {
		return render(secondaryStyle.Render("Select a title to preview."))
	}

	heading := panelTitleStyle.Render(title)
	if uri == "" {
		return render(heading, "", secondaryStyle.Render("No cover art available."))
	}

	image, ok := model.covers[id]
	if !ok {
		if errText, failed := model.coverErrors[id]; failed {
			return render(heading, "", warningStyle.Render(errText))
		}
		cols, rows := coverRenderSize(width, 0, 0)
		return render(heading, "", secondaryStyle.Render("Loading cover..."), coverPlaceholder(rows, cols))
	}

	cols, rows := coverRenderSize(width, image.Width, image.Height)
	sequence, err := cover.RenderKitty(image, cols, rows)
	if err != nil {
		return render(heading, "", warningStyle.Render(err.Error()))
	}

	return render(heading, "", sequence+"\n"+coverPlaceholder(rows, cols))
}

func (model *model) requestCoverCmd() tea.Cmd {
	if !model.supportsGraphics {
		return nil
	}

	selected, ok := model.cardList.SelectedItem().(cardItem)
	if !ok || selected.cover == "" {
		return nil
	}
	if _, ok := model.covers[selected.id]; ok {
		return nil
	}
	if _, ok := model.coverErrors[selected.id]; ok {
		return nil
	}
	if model.coverLoadingID == selected.id {
		return nil
	}

	model.coverLoadingID = selected.id
	return decodeCoverCmd(selected.id, selected.cover)
}
