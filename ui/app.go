package ui

import (
	"fmt"
	"strings"

	"smriti/db"
	"smriti/model"
	"smriti/runner"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeEdit
	modeDelete
	modeParam
)

const (
	fieldAlias = iota
	fieldCommand
	fieldInfo
	fieldService
)

var formLabels = []string{"Alias", "Command", "Info", "Service"}

type App struct {
	db       *db.DB
	shell    string
	commands []model.Command
	filtered []model.Command

	// UI state
	mode   mode
	cursor int
	width  int
	height int
	err    string
	status string

	// Search
	searchInput textinput.Model

	// Output
	output      viewport.Model
	outputLines []string
	running     bool
	outputChan  chan runner.OutputMsg

	// Form (add/edit)
	formInputs []textinput.Model
	formFocus  int
	editingCmd *model.Command

	// Positional arguments for the pending command's placeholders
	paramNames []string
	paramArgs  []string
	paramIndex int
	paramInput textinput.Model
	pendingCmd *model.Command
}

// Browse runs the interactive browser until the user quits.
func Browse(store *db.DB, shell string) error {
	app, err := NewApp(store, shell)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

func NewApp(store *db.DB, shell string) (*App, error) {
	commands, err := store.List()
	if err != nil {
		return nil, err
	}

	search := textinput.New()
	search.Placeholder = "Search aliases, services, commands..."
	search.Focus()

	output := viewport.New(80, 10)

	return &App{
		db:          store,
		shell:       shell,
		commands:    commands,
		filtered:    commands,
		searchInput: search,
		output:      output,
	}, nil
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

type outputMsg runner.OutputMsg

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width - 4   // account for app padding
		a.height = msg.Height - 2 // account for app padding
		a.output.Width = a.width - 4
		a.output.Height = a.height / 3
		return a, nil

	case outputMsg:
		if msg.Done {
			a.running = false
			a.outputChan = nil
			if msg.ErrMsg != "" {
				a.outputLines = append(a.outputLines, errorStyle.Render("Error: "+msg.ErrMsg))
			}
			a.output.SetContent(strings.Join(a.outputLines, "\n"))
			a.output.GotoBottom()
			return a, nil
		}
		line := msg.Line
		if msg.ErrMsg != "" {
			line = errorStyle.Render("Error: " + msg.ErrMsg)
		} else if msg.IsErr {
			line = errorStyle.Render(line)
		}
		a.outputLines = append(a.outputLines, line)
		a.output.SetContent(strings.Join(a.outputLines, "\n"))
		a.output.GotoBottom()
		return a, waitForOutput(a.outputChan)

	case tea.KeyMsg:
		a.err = ""
		a.status = ""

		switch a.mode {
		case modeNormal:
			return a.updateNormal(msg)
		case modeAdd, modeEdit:
			return a.updateForm(msg)
		case modeDelete:
			return a.updateDelete(msg)
		case modeParam:
			return a.updateParam(msg)
		}
	}

	return a, nil
}

func (a *App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "up", "ctrl+k":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down", "ctrl+j":
		if a.cursor < len(a.filtered)-1 {
			a.cursor++
		}

	case "enter":
		if len(a.filtered) > 0 && !a.running {
			return a.runSelectedCommand()
		}

	case "ctrl+a":
		a.mode = modeAdd
		a.initForm(nil)
		return a, nil

	case "ctrl+e":
		if len(a.filtered) > 0 {
			a.mode = modeEdit
			cmd := a.filtered[a.cursor]
			a.editingCmd = &cmd
			a.initForm(&cmd)
		}
		return a, nil

	case "ctrl+d":
		if len(a.filtered) > 0 {
			a.mode = modeDelete
		}
		return a, nil

	case "esc":
		if a.searchInput.Value() == "" {
			return a, tea.Quit
		}
		a.searchInput.SetValue("")
		a.filterCommands()

	default:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.filterCommands()
		return a, cmd
	}

	return a, nil
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.editingCmd = nil
		a.searchInput.Focus()
		return a, nil

	case "tab", "down":
		a.formFocus = (a.formFocus + 1) % len(a.formInputs)
		return a, a.focusFormInput()

	case "shift+tab", "up":
		a.formFocus--
		if a.formFocus < 0 {
			a.formFocus = len(a.formInputs) - 1
		}
		return a, a.focusFormInput()

	case "enter":
		return a.submitForm()

	default:
		var cmd tea.Cmd
		a.formInputs[a.formFocus], cmd = a.formInputs[a.formFocus].Update(msg)
		return a, cmd
	}
}

func (a *App) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if len(a.filtered) > 0 {
			cmd := a.filtered[a.cursor]
			if err := a.db.DeleteByAlias(cmd.Alias); err != nil {
				a.err = err.Error()
			} else {
				a.status = "Deleted!"
				a.refreshCommands()
				if a.cursor >= len(a.filtered) && a.cursor > 0 {
					a.cursor--
				}
			}
		}
		a.mode = modeNormal
		return a, nil

	case "n", "N", "esc":
		a.mode = modeNormal
		return a, nil
	}

	return a, nil
}

func (a *App) updateParam(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.pendingCmd = nil
		a.searchInput.Focus()
		return a, nil

	case "enter":
		a.paramArgs = append(a.paramArgs, a.paramInput.Value())
		a.paramIndex++

		if a.paramIndex >= len(a.paramNames) {
			return a.executeCommand()
		}

		a.paramInput.SetValue("")
		a.paramInput.Placeholder = a.paramNames[a.paramIndex]
		return a, nil

	default:
		var cmd tea.Cmd
		a.paramInput, cmd = a.paramInput.Update(msg)
		return a, cmd
	}
}

func (a *App) runSelectedCommand() (tea.Model, tea.Cmd) {
	cmd := a.filtered[a.cursor]
	params := runner.ExtractParams(cmd.Command)

	a.pendingCmd = &cmd
	a.paramArgs = nil

	if len(params) > 0 {
		a.mode = modeParam
		a.paramNames = params
		a.paramIndex = 0
		a.paramInput = textinput.New()
		a.paramInput.Placeholder = params[0]
		a.paramInput.Focus()
		return a, nil
	}

	return a.executeCommand()
}

func (a *App) executeCommand() (tea.Model, tea.Cmd) {
	cmd := a.pendingCmd
	a.mode = modeNormal
	a.searchInput.Focus()

	line, err := runner.Substitute(cmd.Command, a.paramArgs)
	if err != nil {
		a.err = err.Error()
		return a, nil
	}

	a.running = true
	a.outputLines = []string{cmdPreviewStyle.Render("$ " + line), ""}
	a.output.SetContent(strings.Join(a.outputLines, "\n"))

	a.outputChan = make(chan runner.OutputMsg)
	go runner.Stream(a.shell, line, a.outputChan)

	return a, waitForOutput(a.outputChan)
}

func waitForOutput(ch chan runner.OutputMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return outputMsg{Done: true}
		}
		return outputMsg(msg)
	}
}

func (a *App) initForm(cmd *model.Command) {
	a.formInputs = make([]textinput.Model, len(formLabels))

	aliasInput := textinput.New()
	aliasInput.Placeholder = "Alias (e.g., deploy)"
	aliasInput.Focus()

	cmdInput := textinput.New()
	cmdInput.Placeholder = "Command (use {param} for arguments)"

	infoInput := textinput.New()
	infoInput.Placeholder = "Info (optional)"

	serviceInput := textinput.New()
	serviceInput.Placeholder = "Service (e.g., docker)"

	if cmd != nil {
		aliasInput.SetValue(cmd.Alias)
		cmdInput.SetValue(cmd.Command)
		infoInput.SetValue(cmd.Info)
		serviceInput.SetValue(cmd.Service)
	}

	a.formInputs[fieldAlias] = aliasInput
	a.formInputs[fieldCommand] = cmdInput
	a.formInputs[fieldInfo] = infoInput
	a.formInputs[fieldService] = serviceInput
	a.formFocus = 0
}

func (a *App) focusFormInput() tea.Cmd {
	for i := range a.formInputs {
		a.formInputs[i].Blur()
	}
	return a.formInputs[a.formFocus].Focus()
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	alias := strings.TrimSpace(a.formInputs[fieldAlias].Value())
	command := strings.TrimSpace(a.formInputs[fieldCommand].Value())
	info := strings.TrimSpace(a.formInputs[fieldInfo].Value())
	service := strings.TrimSpace(a.formInputs[fieldService].Value())

	if alias == "" || command == "" || service == "" {
		a.err = "Alias, command and service are required"
		return a, nil
	}

	if a.mode == modeAdd {
		if _, err := a.db.Insert(command, alias, info, service); err != nil {
			a.err = err.Error()
			return a, nil
		}
		a.status = "Added!"
	} else {
		if err := a.applyEdit(alias, command, info, service); err != nil {
			a.err = err.Error()
			a.refreshCommands()
			return a, nil
		}
		a.status = "Updated!"
	}

	a.editingCmd = nil
	a.refreshCommands()
	a.mode = modeNormal
	a.searchInput.Focus()
	return a, nil
}

// applyEdit writes only the fields that changed, renaming last so the
// updates can address the record by its original alias.
func (a *App) applyEdit(alias, command, info, service string) error {
	orig := a.editingCmd
	updates := []struct {
		field db.Mutable
		old   string
		new   string
	}{
		{db.MutableCommand, orig.Command, command},
		{db.MutableInfo, orig.Info, info},
		{db.MutableService, orig.Service, service},
	}
	for _, u := range updates {
		if u.old == u.new {
			continue
		}
		if err := a.db.UpdateField(orig.Alias, u.field, u.new); err != nil {
			return err
		}
	}

	if alias != orig.Alias {
		return a.db.RenameAlias(orig.Alias, alias)
	}
	return nil
}

func (a *App) refreshCommands() {
	commands, err := a.db.List()
	if err != nil {
		a.err = err.Error()
		return
	}
	a.commands = commands
	a.filterCommands()
}

func (a *App) filterCommands() {
	query := a.searchInput.Value()
	if query == "" {
		a.filtered = a.commands
		return
	}

	targets := make([]string, 0, len(a.commands))
	for _, c := range a.commands {
		targets = append(targets, strings.Join([]string{c.Alias, c.Service, c.Command, c.Info}, " "))
	}

	matches := fuzzy.Find(query, targets)
	a.filtered = make([]model.Command, len(matches))
	for i, m := range matches {
		a.filtered[i] = a.commands[m.Index]
	}

	if a.cursor >= len(a.filtered) {
		a.cursor = max(0, len(a.filtered)-1)
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("smriti"))
	b.WriteString("\n\n")

	b.WriteString(a.searchInput.View())
	b.WriteString("\n\n")

	listHeight := a.height - a.output.Height - 10
	if listHeight < 3 {
		listHeight = 3
	}

	if a.mode == modeAdd || a.mode == modeEdit {
		b.WriteString(a.renderForm())
	} else {
		b.WriteString(a.renderList(listHeight))
	}

	if a.mode == modeDelete && len(a.filtered) > 0 {
		cmd := a.filtered[a.cursor]
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(fmt.Sprintf("Delete '%s'? (y/n)", cmd.Alias)))
		b.WriteString("\n")
	}

	if a.mode == modeParam {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("Enter value for {%s} (%d/%d): ",
			a.paramNames[a.paramIndex], a.paramIndex+1, len(a.paramNames))))
		b.WriteString(a.paramInput.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(outputTitleStyle.Render("OUTPUT"))
	b.WriteString("\n")

	b.WriteString(borderStyle.Width(a.width - 4).Render(a.output.View()))
	b.WriteString("\n")

	if a.err != "" {
		b.WriteString(errorStyle.Render("Error: " + a.err))
		b.WriteString("\n")
	}
	if a.status != "" {
		b.WriteString(successStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString(a.renderHelp())

	return appStyle.Render(b.String())
}

func (a *App) renderList(height int) string {
	if len(a.filtered) == 0 {
		return mutedStyle.Render("No commands found. Press ctrl+a to add one.\n")
	}

	var lines []string
	start := 0
	if a.cursor >= height {
		start = a.cursor - height + 1
	}

	end := min(start+height, len(a.filtered))

	for i := start; i < end; i++ {
		cmd := a.filtered[i]
		prefix := "  "
		style := normalStyle
		if i == a.cursor {
			prefix = "▸ "
			style = selectedStyle
		}

		name := style.Render(prefix+cmd.Alias) + " " + serviceTagStyle.Render("["+cmd.Service+"]")
		preview := cmdPreviewStyle.Render("  " + truncate(cmd.Command, a.width-10))
		lines = append(lines, name, preview)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (a *App) renderForm() string {
	var b strings.Builder

	title := "Add Command"
	if a.mode == modeEdit {
		title = "Edit Command"
	}
	b.WriteString(labelStyle.Render(title))
	b.WriteString("\n\n")

	for i, input := range a.formInputs {
		b.WriteString(labelStyle.Render(formLabels[i] + ": "))
		style := inputStyle
		if i == a.formFocus {
			style = focusedInputStyle
		}
		b.WriteString(style.Width(a.width - 20).Render(input.View()))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	b.WriteString("\n")

	return b.String()
}

func (a *App) renderHelp() string {
	if a.mode != modeNormal {
		return ""
	}

	keys := []struct{ key, desc string }{
		{"enter", "run"},
		{"ctrl+a", "add"},
		{"ctrl+e", "edit"},
		{"ctrl+d", "delete"},
		{"esc", "clear/quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}

	return strings.Join(parts, "  ")
}

// truncate cuts s to max display cells, never inside a rune.
func truncate(s string, max int) string {
	if max < 4 {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}
