package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssh-vom/mangashelf/internal/cover"
	"github.com/ssh-vom/mangashelf/internal/feed"
)

const (
	DefaultInterval       = 5 * time.Second
	DefaultRequestTimeout = 60 * time.Second
	logLineLimit          = 6
)

// Feed is the slice of the aggregation layer the terminal UI drives.
type Feed interface {
	Latest(ctx context.Context) ([]feed.Card, error)
	Search(ctx context.Context, query string) ([]feed.Card, error)
	Carousel(ctx context.Context) ([]feed.CarouselItem, error)
	TopListings(ctx context.Context) (*feed.TopListings, error)
}

type appState int

const (
	stateLoading appState = iota
	stateCarousel
	stateSearchQuery
	stateList
	stateError
)

type Options struct {
	Interval       time.Duration
	RequestTimeout time.Duration
	Verbose        bool
	// Logs receives the process logger output when Verbose is set.
	Logs *LogSink
	// Graphics forces kitty cover rendering on or off; nil detects it from TERM.
	Graphics *bool
}

type model struct {
	state       appState
	returnState appState

	feed    Feed
	options Options

	items      []feed.CarouselItem
	index      int
	generation int
	paused     bool

	cardList  list.Model
	listTitle string
	textInput textinput.Model
	spinner   spinner.Model

	loadingLabel string
	errorMessage string

	covers           map[string]cover.Image
	coverErrors      map[string]string
	coverLoadingID   string
	supportsGraphics bool

	width  int
	height int

	logLines []string
}

func NewModel(source Feed, options Options) model {
	if options.Interval <= 0 {
		options.Interval = DefaultInterval
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = DefaultRequestTimeout
	}

	spinnerModel := spinner.New()
	spinnerModel.Spinner = spinner.Dot

	graphics := supportsKittyGraphics()
	if options.Graphics != nil {
		graphics = *options.Graphics
	}

	return model{
		state:            stateLoading,
		returnState:      stateCarousel,
		feed:             source,
		options:          options,
		cardList:         newCardList(nil, "", 0, 0),
		textInput:        newQueryInput(),
		spinner:          spinnerModel,
		loadingLabel:     "Picking featured titles...",
		covers:           map[string]cover.Image{},
		coverErrors:      map[string]string{},
		supportsGraphics: graphics,
	}
}

func (model model) Init() tea.Cmd {
	commands := []tea.Cmd{model.spinner.Tick, model.loadCarouselCmd()}
	if model.logsEnabled() {
		commands = append(commands, listenLogCmd(model.options.Logs.channel))
	}
	return tea.Batch(commands...)
}

func (model model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		model.width = msg.Width
		model.height = msg.Height
		model.cardList.SetSize(resultsListWidth(msg.Width), listHeight(msg.Height))
		return model, nil
	case carouselMsg:
		if msg.err != nil {
			return model.fail(msg.err), nil
		}
		model.items = msg.items
		model.index = 0
		model.paused = false
		for id, image := range msg.covers {
			model.covers[id] = image
		}
		for id, errText := range msg.coverErrors {
			model.coverErrors[id] = errText
		}
		model.state = stateCarousel
		return model, model.armAdvance()
	case cardsMsg:
		if msg.err != nil {
			return model.fail(msg.err), nil
		}
		model.showList(msg.title, msg.items)
		return model, model.requestCoverCmd()
	case advanceMsg:
		if msg.generation != model.generation || model.state != stateCarousel || model.paused || len(model.items) == 0 {
			return model, nil
		}
		model.index = (model.index + 1) % len(model.items)
		return model, model.armAdvance()
	case coverDecodedMsg:
		if msg.err != nil {
			model.coverErrors[msg.id] = msg.err.Error()
		} else {
			model.covers[msg.id] = msg.image
		}
		if model.coverLoadingID == msg.id {
			model.coverLoadingID = ""
		}
		return model, model.requestCoverCmd()
	case logMsg:
		if !model.logsEnabled() {
			return model, nil
		}
		model.logLines = append(model.logLines, string(msg))
		if len(model.logLines) > logLineLimit {
			model.logLines = model.logLines[len(model.logLines)-logLineLimit:]
		}
		return model, listenLogCmd(model.options.Logs.channel)
	}

	return model.handleStateUpdate(msg)
}

func (model *model) handleStateUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return *model, tea.Quit
	}

	switch model.state {
	case stateLoading:
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(msg)
		return *model, cmd
	case stateCarousel:
		return *model, model.updateCarousel(msg)
	case stateSearchQuery:
		return *model, model.updateSearchQuery(msg)
	case stateList:
		return *model, model.updateList(msg)
	case stateError:
		return *model, model.updateError(msg)
	default:
		return *model, nil
	}
}

func (model *model) updateCarousel(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "right":
		if len(model.items) > 0 {
			model.index = (model.index + 1) % len(model.items)
		}
		return model.armAdvance()
	case "left":
		if len(model.items) > 0 {
			model.index = (model.index - 1 + len(model.items)) % len(model.items)
		}
		return model.armAdvance()
	case " ":
		model.paused = !model.paused
		return model.armAdvance()
	case "r":
		return model.startLoading("Reshuffling...", model.loadCarouselCmd())
	case "l":
		return model.startLoading("Fetching latest updates...", model.loadLatestCmd())
	case "t":
		return model.startLoading("Ranking top titles...", model.loadTopCmd())
	case "/":
		model.openSearch(stateCarousel)
		return textinput.Blink
	case "q":
		return tea.Quit
	}
	return nil
}

func (model *model) updateSearchQuery(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if ok && key.String() == "esc" {
		return model.back(model.returnState)
	}
	if ok && key.String() != "enter" {
		model.errorMessage = ""
	}

	var cmd tea.Cmd
	model.textInput, cmd = model.textInput.Update(msg)
	if ok && key.String() == "enter" {
		query := strings.TrimSpace(model.textInput.Value())
		if query == "" {
			model.errorMessage = feed.ErrEmptyQuery.Error()
			return nil
		}
		model.errorMessage = ""
		return model.startLoading("Searching MangaDex...", model.searchCmd(query))
	}
	return cmd
}

func (model *model) updateList(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if ok && model.cardList.FilterState() != list.Filtering {
		switch key.String() {
		case "esc":
			return model.back(stateCarousel)
		case "/":
			model.openSearch(stateList)
			return textinput.Blink
		case "q":
			return tea.Quit
		}
	}

	var cmd tea.Cmd
	model.cardList, cmd = model.cardList.Update(msg)
	return tea.Batch(cmd, model.requestCoverCmd())
}

func (model *model) updateError(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "r":
		return model.startLoading("Retrying...", model.loadCarouselCmd())
	case "esc":
		if len(model.items) > 0 {
			return model.back(stateCarousel)
		}
	case "q":
		return tea.Quit
	}
	return nil
}

// armAdvance schedules the next auto advance. Bumping the generation makes
// any tick already in flight a no-op.
func (model *model) armAdvance() tea.Cmd {
	model.generation++
	if model.paused || len(model.items) < 2 {
		return nil
	}
	return advanceCmd(model.options.Interval, model.generation)
}

func (model *model) startLoading(label string, load tea.Cmd) tea.Cmd {
	model.generation++
	model.state = stateLoading
	model.loadingLabel = label
	model.errorMessage = ""
	return tea.Batch(model.spinner.Tick, load)
}

func (model *model) openSearch(from appState) {
	model.generation++
	model.returnState = from
	model.state = stateSearchQuery
	model.errorMessage = ""
	model.textInput.SetValue("")
	model.textInput.Focus()
}

func (model *model) back(to appState) tea.Cmd {
	model.errorMessage = ""
	if to == stateCarousel && len(model.items) == 0 {
		return model.startLoading("Picking featured titles...", model.loadCarouselCmd())
	}
	model.state = to
	if to == stateCarousel {
		return model.armAdvance()
	}
	return nil
}

func (model *model) showList(title string, items []cardItem) {
	model.listTitle = title
	model.cardList = newCardList(items, title, resultsListWidth(model.width), listHeight(model.height))
	model.coverLoadingID = ""
	model.state = stateList
}

func (model model) fail(err error) model {
	model.state = stateError
	model.errorMessage = err.Error()
	return model
}

func (model model) logsEnabled() bool {
	return model.options.Verbose && model.options.Logs != nil
}

func (model model) View() string {
	view := ""

	switch model.state {
	case stateLoading:
		view = fmt.Sprintf("%s %s", model.spinner.View(), model.loadingLabel)
	case stateCarousel:
		view = model.carouselView()
	case stateSearchQuery:
		lines := []string{
			titleStyle.Render("Search MangaDex"),
			model.textInput.View(),
		}
		if model.errorMessage != "" {
			lines = append(lines, warningStyle.Render(model.errorMessage))
		}
		lines = append(lines, secondaryStyle.Render("Enter to search · esc to cancel"))
		view = lipgloss.JoinVertical(lipgloss.Left, lines...)
	case stateList:
		view = model.listView()
	case stateError:
		view = lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("MangaDex request failed"),
			warningStyle.Render(model.errorMessage),
			"",
			secondaryStyle.Render("r retry · esc back · q quit"),
		)
	}

	if model.logsEnabled() {
		view = lipgloss.JoinVertical(lipgloss.Left, view, model.logView())
	}

	return view
}

func (model model) carouselView() string {
	if len(model.items) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Featured"),
			secondaryStyle.Render("Nothing to feature right now."),
			secondaryStyle.Render("r reshuffle · l latest · t top · / search · q quit"),
		)
	}

	item := model.items[model.index]
	header := titleStyle.Render("Featured") + secondaryStyle.Render(fmt.Sprintf("  %d/%d", model.index+1, len(model.items)))
	if model.paused {
		header += secondaryStyle.Render("  paused")
	}

	panelWidth := coverPanelWidth(model.width)
	detailsWidth := resultsListWidth(model.width)
	details := lipgloss.NewStyle().Width(detailsWidth).Render(carouselDetails(item))
	coverPanel := model.coverPanel(item.ID, item.Title, item.Cover, panelWidth)

	body := lipgloss.JoinHorizontal(lipgloss.Top, coverPanel, details)
	if model.width > 0 && model.width < 80 {
		body = lipgloss.JoinVertical(lipgloss.Left, coverPanel, details)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		carouselDots(len(model.items), model.index),
		secondaryStyle.Render("←/→ browse · space pause · r reshuffle · l latest · t top · / search · q quit"),
	)
}

func carouselDetails(item feed.CarouselItem) string {
	lines := []string{panelTitleStyle.Render(item.Title)}

	meta := []string{}
	if item.Year > 0 {
		meta = append(meta, fmt.Sprint(item.Year))
	}
	if item.Status != "" {
		meta = append(meta, item.Status)
	}
	if len(item.Authors) > 0 {
		meta = append(meta, strings.Join(item.Authors, ", "))
	}
	if len(meta) > 0 {
		lines = append(lines, secondaryStyle.Render(strings.Join(meta, " · ")))
	}
	if len(item.Tags) > 0 {
		lines = append(lines, tagStyle.Render(strings.Join(item.Tags, "  ")))
	}
	if item.Description != "" {
		lines = append(lines, "", item.Description)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func carouselDots(total, index int) string {
	dots := make([]string, total)
	for i := range dots {
		if i == index {
			dots[i] = focusedStyle.Render("●")
		} else {
			dots[i] = blurStyle.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

func (model model) listView() string {
	listSection := []string{model.cardList.View()}
	if model.errorMessage != "" {
		listSection = append(listSection, warningStyle.Render(model.errorMessage))
	}
	listSection = append(listSection, secondaryStyle.Render("/ search · esc back to carousel · q quit"))

	selected, _ := model.cardList.SelectedItem().(cardItem)
	panel := model.coverPanel(selected.id, selected.title, selected.cover, coverPanelWidth(model.width))
	listView := lipgloss.NewStyle().Width(resultsListWidth(model.width)).Render(lipgloss.JoinVertical(lipgloss.Left, listSection...))

	if model.width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, listView, panel)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, listView, panel)
}

func (model model) logView() string {
	if len(model.logLines) == 0 {
		return secondaryStyle.Render("Logs: (no entries)")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		secondaryStyle.Render("Logs:"),
		strings.Join(model.logLines, "\n"),
	)
}

func newQueryInput() textinput.Model {
	input := textinput.New()
	input.Placeholder = "e.g. Frieren"
	input.Prompt = "> "
	input.Focus()
	return input
}

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, source Feed, options Options) error {
	program := tea.NewProgram(NewModel(source, options), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
