// Package ui builds the overlay window. Widgets never touch application
// state directly: every interaction is posted to the command loop through
// App.EnqueueCommand, and the loop pushes a fresh ViewModel back through
// MainWindow.Update after each command.
//
// Maintenance notes:
//   - Update may be called from any goroutine; it hops to the fyne main
//     thread with fyne.Do. Everything else here runs on the main thread.
//   - Callbacks must not wait for a command's reply. Panel commands resize
//     the window with fyne.DoAndWait, which would deadlock if the main
//     thread were blocked on the loop.
package ui

import (
	"fmt"
	"image/color"
	"strings"

	"MatchLens/control"
	"MatchLens/game"
	"MatchLens/hotkey"
	"MatchLens/i18n"
	"MatchLens/panel"
	"MatchLens/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	AppTitle     = "MatchLens"
	rowHeight    = 34
	sectionGap   = 8
	statusRadius = 5
)

type App interface {
	EnqueueCommand(cmd control.Command)
}

// ViewModel is a read-only snapshot of everything the window shows.
type ViewModel struct {
	Session    session.Session
	Match      game.MatchState
	Binding    hotkey.Binding
	Capture    hotkey.CaptureState
	Preview    string
	CaptureErr string
	Panel      panel.State
	AutoLock   *string
	Lang       string
}

type MainWindow struct {
	Window fyne.Window

	app       App
	mods      *modifierTracker
	recording bool
	lang      string

	statusDot       *canvas.Circle
	statusLabel     *widget.Label
	reconnectButton *widget.Button
	settingsButton  *widget.Button

	waitingTitle *widget.Label
	waitingDesc  *widget.Label
	waitingView  *fyne.Container
	matchInfo    *widget.Label
	alliesTitle  *canvas.Text
	enemiesTitle *canvas.Text
	alliesBox    *fyne.Container
	enemiesBox   *fyne.Container
	matchView    *fyne.Container

	autoLockLabel *widget.Label

	side          *fyne.Container
	sideTitle     *widget.Label
	settingsView  *fyne.Container
	playerView    *fyne.Container
	hotkeyTitle   *widget.Label
	hotkeyValue   *widget.Label
	hotkeyButton  *widget.Button
	captureCancel *widget.Button
	captureError  *widget.Label
	agentTitle    *widget.Label
	agentEntry    *widget.Entry
	agentSet      *widget.Button
	agentDisable  *widget.Button
	langTitle     *widget.Label
	langSelect    *widget.Select
	playerName    *widget.Label
	playerDetails *widget.Label
	closeButton   *widget.Button
}

// CreateMainWindow builds the window at its base size. The caller shows it.
func CreateMainWindow(a App, fyneApp fyne.App) *MainWindow {
	title := fyneApp.Metadata().Name
	if title == "" {
		title = AppTitle
	}
	m := &MainWindow{
		Window: fyneApp.NewWindow(title),
		app:    a,
		mods:   newModifierTracker(),
	}

	header := m.buildHeader()
	body := m.buildBody()
	footer := m.buildFooter()
	m.side = m.buildSidePanel()
	m.side.Hide()

	main := container.NewBorder(header, footer, nil, nil, container.NewVScroll(body))
	m.Window.SetContent(container.NewBorder(nil, nil, nil, m.side, main))
	m.Window.Resize(fyne.NewSize(panel.BaseWidth, panel.WindowHeight))
	m.Window.SetFixedSize(true)

	if dc, ok := m.Window.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(m.onKeyDown)
		dc.SetOnKeyUp(m.onKeyUp)
	}

	m.apply(ViewModel{Match: game.Idle(), Binding: hotkey.Binding{Key: hotkey.DefaultBinding}, Lang: i18n.GetLang()})
	return m
}

func (m *MainWindow) buildHeader() fyne.CanvasObject {
	m.statusDot = canvas.NewCircle(enemyColor)
	dotHolder := container.NewGridWrap(fyne.NewSize(2*statusRadius, 2*statusRadius), m.statusDot)
	m.statusLabel = widget.NewLabel("")

	m.reconnectButton = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		m.app.EnqueueCommand(control.Command{Type: control.CmdReconnect})
	})
	m.settingsButton = widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		m.app.EnqueueCommand(control.Command{Type: control.CmdOpenSettings})
	})

	titleText := canvas.NewText(AppTitle, accentColor)
	titleText.TextStyle.Bold = true

	left := container.NewHBox(titleText, container.NewCenter(dotHolder), m.statusLabel)
	right := container.NewHBox(m.reconnectButton, m.settingsButton)
	return container.NewBorder(nil, nil, left, right)
}

func (m *MainWindow) buildBody() fyne.CanvasObject {
	m.waitingTitle = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	m.waitingDesc = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	m.waitingDesc.Wrapping = fyne.TextWrapWord
	m.waitingView = container.NewVBox(layout.NewSpacer(), m.waitingTitle, m.waitingDesc, layout.NewSpacer())

	m.matchInfo = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	m.alliesTitle = canvas.NewText("", allyColor)
	m.alliesTitle.TextStyle.Bold = true
	m.enemiesTitle = canvas.NewText("", enemyColor)
	m.enemiesTitle.TextStyle.Bold = true
	m.alliesBox = container.NewVBox()
	m.enemiesBox = container.NewVBox()

	gap := canvas.NewRectangle(color.Transparent)
	gap.SetMinSize(fyne.NewSize(0, sectionGap))

	m.matchView = container.NewVBox(
		m.matchInfo,
		m.alliesTitle, m.alliesBox,
		gap,
		m.enemiesTitle, m.enemiesBox,
	)
	m.matchView.Hide()

	return container.NewStack(m.waitingView, m.matchView)
}

func (m *MainWindow) buildFooter() fyne.CanvasObject {
	m.autoLockLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true})
	return m.autoLockLabel
}

func (m *MainWindow) buildSidePanel() *fyne.Container {
	m.sideTitle = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	m.closeButton = widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		m.app.EnqueueCommand(control.Command{Type: control.CmdClosePanel})
	})

	m.hotkeyTitle = widget.NewLabel("")
	m.hotkeyValue = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})
	m.hotkeyButton = widget.NewButton("", func() {
		m.mods.reset()
		m.Window.Canvas().Unfocus()
		m.app.EnqueueCommand(control.Command{Type: control.CmdStartCapture})
	})
	m.captureCancel = widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		m.app.EnqueueCommand(control.Command{Type: control.CmdCancelCapture})
	})
	m.captureError = widget.NewLabel("")
	m.captureError.Importance = widget.DangerImportance
	m.captureError.Wrapping = fyne.TextWrapWord

	m.agentTitle = widget.NewLabel("")
	m.agentEntry = widget.NewEntry()
	m.agentSet = widget.NewButtonWithIcon("", theme.ConfirmIcon(), func() {
		m.submitAgent(m.agentEntry.Text)
	})
	m.agentEntry.OnSubmitted = m.submitAgent
	m.agentDisable = widget.NewButton("", func() {
		m.agentEntry.SetText("")
		m.app.EnqueueCommand(control.Command{Type: control.CmdSetAutoLock})
	})

	m.langTitle = widget.NewLabel("")
	m.langSelect = widget.NewSelect(i18n.Supported, func(lang string) {
		if lang == m.lang {
			return
		}
		m.app.EnqueueCommand(control.Command{Type: control.CmdSetLocale, Locale: lang})
	})

	m.settingsView = container.NewVBox(
		m.hotkeyTitle,
		container.NewBorder(nil, nil, nil, container.NewHBox(m.hotkeyButton, m.captureCancel), m.hotkeyValue),
		m.captureError,
		widget.NewSeparator(),
		m.agentTitle,
		container.NewBorder(nil, nil, nil, m.agentSet, m.agentEntry),
		m.agentDisable,
		widget.NewSeparator(),
		m.langTitle,
		m.langSelect,
	)

	m.playerName = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	m.playerDetails = widget.NewLabel("")
	m.playerDetails.Wrapping = fyne.TextWrapWord
	m.playerView = container.NewVBox(m.playerName, m.playerDetails)

	sizer := canvas.NewRectangle(color.Transparent)
	sizer.SetMinSize(fyne.NewSize(panel.PanelWidth, 0))

	header := container.NewBorder(nil, nil, nil, m.closeButton, m.sideTitle)
	content := container.NewVBox(header, widget.NewSeparator(), container.NewStack(m.settingsView, m.playerView))
	return container.NewStack(sizer, content)
}

func (m *MainWindow) submitAgent(text string) {
	cmd := control.Command{Type: control.CmdSetAutoLock}
	if agent := strings.TrimSpace(text); agent != "" {
		cmd.Agent = &agent
	}
	m.app.EnqueueCommand(cmd)
	m.Window.Canvas().Unfocus()
}

func (m *MainWindow) onKeyDown(e *fyne.KeyEvent) {
	ev := m.mods.down(e.Name)
	if !m.recording {
		return
	}
	m.app.EnqueueCommand(control.Command{Type: control.CmdCaptureKey, Key: ev})
}

func (m *MainWindow) onKeyUp(e *fyne.KeyEvent) {
	m.mods.up(e.Name)
}

// Update shows vm. Safe to call from any goroutine.
func (m *MainWindow) Update(vm ViewModel) {
	fyne.Do(func() { m.apply(vm) })
}

func (m *MainWindow) apply(vm ViewModel) {
	m.lang = vm.Lang
	m.recording = vm.Capture == hotkey.CaptureRecording

	m.applyHeader(vm)
	m.applyMatch(vm.Match)
	m.applyPanel(vm)

	if vm.AutoLock != nil {
		m.autoLockLabel.SetText(fmt.Sprintf("%s: %s", i18n.T("AUTO-LOCK"), *vm.AutoLock))
	} else {
		m.autoLockLabel.SetText(fmt.Sprintf("%s: %s", i18n.T("AUTO-LOCK"), i18n.T("OFF")))
	}
}

func (m *MainWindow) applyHeader(vm ViewModel) {
	if vm.Session.Connected {
		m.statusDot.FillColor = allyColor
		text := i18n.T("Connected")
		if vm.Session.Region != "" {
			text += " · " + strings.ToUpper(vm.Session.Region)
		}
		m.statusLabel.SetText(text)
		m.reconnectButton.Importance = widget.LowImportance
	} else {
		m.statusDot.FillColor = enemyColor
		m.statusLabel.SetText(i18n.T("Connecting..."))
		m.reconnectButton.Importance = widget.HighImportance
	}
	m.statusDot.Refresh()
	m.reconnectButton.Refresh()
}

func (m *MainWindow) applyMatch(st game.MatchState) {
	if !st.InMatch() {
		m.waitingTitle.SetText(i18n.T("Waiting for Match"))
		m.waitingDesc.SetText(i18n.T("Start a match to see player data"))
		m.matchView.Hide()
		m.waitingView.Show()
		return
	}

	parts := []string{st.Map}
	if st.Mode != "" {
		parts = append(parts, st.Mode)
	}
	if st.Side != "" {
		parts = append(parts, st.Side)
	}
	m.matchInfo.SetText(strings.Join(parts, " · "))

	m.alliesTitle.Text = i18n.T("ALLIES")
	m.enemiesTitle.Text = i18n.T("ENEMIES")
	m.alliesTitle.Refresh()
	m.enemiesTitle.Refresh()

	pregame := st.Kind == game.KindPregame
	m.fillPlayers(m.alliesBox, st.Allies, allyColor, pregame)
	m.fillPlayers(m.enemiesBox, st.Enemies, enemyColor, pregame)

	m.waitingView.Hide()
	m.matchView.Show()
}

func (m *MainWindow) fillPlayers(box *fyne.Container, players []game.PlayerSnapshot, tint color.Color, pregame bool) {
	box.RemoveAll()
	for _, p := range players {
		box.Add(m.playerRow(p, tint, pregame))
	}
	box.Refresh()
}

func (m *MainWindow) playerRow(p game.PlayerSnapshot, tint color.Color, pregame bool) fyne.CanvasObject {
	bg := canvas.NewRectangle(withAlpha(tint, 0x26))
	bg.CornerRadius = 4
	bg.SetMinSize(fyne.NewSize(0, rowHeight))

	name := canvas.NewText(p.Name, color.White)
	name.TextStyle.Bold = p.IsMe

	agent := p.Agent
	if pregame && !p.Locked {
		agent = i18n.T("Selecting...")
	}
	agentText := canvas.NewText(agent, theme.Color(theme.ColorNameForeground))
	agentText.TextStyle.Italic = pregame && !p.Locked

	row := container.NewBorder(nil, nil, container.NewPadded(name), container.NewPadded(agentText))
	selected := p
	return NewTappableContainer(container.NewStack(bg, row), func() {
		m.app.EnqueueCommand(control.Command{Type: control.CmdOpenPlayer, Player: &selected})
	}, nil)
}

func (m *MainWindow) applyPanel(vm ViewModel) {
	st := vm.Panel
	if !st.IsOpen {
		m.side.Hide()
		return
	}

	switch st.Type {
	case panel.Settings:
		m.sideTitle.SetText(i18n.T("Settings"))
		m.applySettings(vm)
		m.playerView.Hide()
		m.settingsView.Show()
	case panel.Player:
		if st.Selected != nil {
			m.sideTitle.SetText(st.Selected.Name)
			m.applyPlayer(*st.Selected)
		}
		m.settingsView.Hide()
		m.playerView.Show()
	}
	m.side.Show()
}

func (m *MainWindow) applySettings(vm ViewModel) {
	m.hotkeyTitle.SetText(i18n.T("Toggle Hotkey"))
	m.agentTitle.SetText(i18n.T("Auto-Lock Agent"))
	m.agentDisable.SetText(i18n.T("Disable Auto-Lock"))
	m.langTitle.SetText(i18n.T("Language"))

	if m.recording {
		hint := i18n.T("Press a key...")
		if vm.Preview != "" {
			hint = vm.Preview
		}
		m.hotkeyValue.SetText(hint)
		m.hotkeyButton.Disable()
		m.captureCancel.Show()
	} else {
		m.hotkeyValue.SetText(vm.Binding.Key)
		m.hotkeyButton.Enable()
		m.captureCancel.Hide()
	}
	m.hotkeyButton.SetText(i18n.T("Change"))

	if vm.CaptureErr != "" {
		m.captureError.SetText(vm.CaptureErr)
		m.captureError.Show()
	} else {
		m.captureError.Hide()
	}

	if vm.AutoLock != nil {
		m.agentEntry.SetPlaceHolder(*vm.AutoLock)
	} else {
		m.agentEntry.SetPlaceHolder(i18n.T("OFF"))
	}

	if m.langSelect.Selected != vm.Lang {
		m.langSelect.SetSelected(vm.Lang)
	}
}

func (m *MainWindow) applyPlayer(p game.PlayerSnapshot) {
	m.playerName.SetText(p.Name)

	lines := []string{p.Agent}
	if p.Locked {
		lines[0] += " (" + i18n.T("Locked") + ")"
	}
	lines = append(lines,
		fmt.Sprintf("%s: %d · %d RR", i18n.T("Rank"), p.RankTier, p.RankRR),
		fmt.Sprintf("%s %d", i18n.T("Lvl"), p.Level),
	)
	if p.Party != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", i18n.T("Party"), p.Party))
	}
	m.playerDetails.SetText(strings.Join(lines, "\n"))
}

type TappableContainer struct {
	widget.BaseWidget
	Content           fyne.CanvasObject
	OnTappedPrimary   func()
	OnTappedSecondary func(e *fyne.PointEvent)
}

func NewTappableContainer(c fyne.CanvasObject, onP func(), onS func(e *fyne.PointEvent)) *TappableContainer {
	t := &TappableContainer{
		Content:           c,
		OnTappedPrimary:   onP,
		OnTappedSecondary: onS,
	}
	t.ExtendBaseWidget(t)
	return t
}

func (t *TappableContainer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.Content)
}

func (t *TappableContainer) Tapped(_ *fyne.PointEvent) {
	if t.OnTappedPrimary != nil {
		t.OnTappedPrimary()
	}
}

func (t *TappableContainer) TappedSecondary(e *fyne.PointEvent) {
	if t.OnTappedSecondary != nil {
		t.OnTappedSecondary(e)
	}
}

func withAlpha(c color.Color, alpha uint8) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}
