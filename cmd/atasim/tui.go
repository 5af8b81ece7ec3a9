package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nsf/termbox-go"
)

type uiMode uint8

const (
	modeBusy uiMode = iota
	modeAwaitDecision
	modePrompt
)

type userDecision uint8

const (
	userDecisionBailout userDecision = iota
	userDecisionNOOP
	userDecisionNext
	userDecisionQuit
)

var spinnerFrames = []rune{'|', '/', '-', '\\'}

type renderResult struct {
	result ScenarioResult
	table  string
	err    error
}

// termUI is a one-scenario-at-a-time stepper: pick a scenario number, watch
// it run, read the rendered before/after table, then either move on or quit.
// It mirrors the teacher's confirm-a-swap state machine, generalized from
// "confirm a swap intent" to "confirm/observe a derived-address scenario".
type termUI struct {
	resultCh      chan renderResult
	done          chan struct{}
	mode          uiMode
	promptBuffer  []rune
	tableLines    []string
	busy          bool
	busyScenario  int
	statusMessage string
	cursorVisible bool
}

func newTermUI() *termUI {
	return &termUI{
		resultCh:      make(chan renderResult),
		done:          make(chan struct{}),
		cursorVisible: true,
	}
}

func (ui *termUI) Run(first int) error {
	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()
	defer close(ui.done)
	eventCh := make(chan termbox.Event)
	go func() {
		for {
			eventCh <- termbox.PollEvent()
		}
	}()
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	ui.startScenario(first)
	for {
		ui.draw()
		select {
		case ev := <-eventCh:
			switch ev.Type {
			case termbox.EventError:
				return ev.Err
			case termbox.EventResize:
				continue
			case termbox.EventKey:
				if decision, ok := ui.handleKey(ev); ok {
					switch decision {
					case userDecisionBailout, userDecisionQuit:
						return nil
					case userDecisionNext:
						// handled inline in handleKey via startScenario
					}
				}
			}
		case res := <-ui.resultCh:
			ui.busy = false
			ui.tableLines = splitLines(res.table)
			if res.err != nil {
				ui.statusMessage = fmt.Sprintf("scenario failed to run: %v", res.err)
			} else {
				ui.statusMessage = "Enter a scenario number (1-7) and press Enter, or q to quit."
			}
			ui.mode = modeAwaitDecision
		case <-ticker.C:
			ui.cursorVisible = !ui.cursorVisible
		}
	}
}

func (ui *termUI) startScenario(n int) {
	s, ok := ScenariosByNumber(n)
	if !ok {
		ui.statusMessage = fmt.Sprintf("no such scenario: %d", n)
		ui.mode = modeAwaitDecision
		return
	}
	ui.busy = true
	ui.busyScenario = n
	ui.mode = modeBusy
	go func() {
		res := s.Run()
		select {
		case ui.resultCh <- renderResult{result: res, table: renderScenario(res)}:
		case <-ui.done:
		}
	}()
}

func (ui *termUI) handleKey(ev termbox.Event) (userDecision, bool) {
	if ev.Key == termbox.KeyCtrlC {
		return userDecisionBailout, true
	}
	switch ui.mode {
	case modeBusy:
		if ev.Key == termbox.KeyEsc {
			return userDecisionBailout, true
		}
	case modeAwaitDecision:
		switch {
		case ev.Ch == 'q' || ev.Ch == 'Q':
			return userDecisionQuit, true
		case ev.Key == termbox.KeyEsc:
			return userDecisionQuit, true
		case ev.Ch >= '0' && ev.Ch <= '9':
			ui.mode = modePrompt
			ui.promptBuffer = []rune{ev.Ch}
		}
	case modePrompt:
		switch ev.Key {
		case termbox.KeyEnter:
			n, err := strconv.Atoi(strings.TrimSpace(string(ui.promptBuffer)))
			ui.promptBuffer = nil
			if err != nil {
				ui.statusMessage = fmt.Sprintf("invalid scenario number: %v", err)
				ui.mode = modeAwaitDecision
				return userDecisionNOOP, false
			}
			ui.startScenario(n)
			return userDecisionNOOP, false
		case termbox.KeyBackspace, termbox.KeyBackspace2:
			if len(ui.promptBuffer) > 0 {
				ui.promptBuffer = ui.promptBuffer[:len(ui.promptBuffer)-1]
			}
		case termbox.KeyEsc:
			ui.mode = modeAwaitDecision
			ui.promptBuffer = nil
		default:
			if ev.Ch != 0 {
				ui.promptBuffer = append(ui.promptBuffer, ev.Ch)
			}
		}
	}
	return userDecisionNOOP, false
}

func (ui *termUI) draw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	width, height := termbox.Size()
	tableArea := max(height-2, 0)
	linesToShow := min(len(ui.tableLines), tableArea)
	for i := 0; i < linesToShow; i++ {
		ui.drawText(0, i, width, ui.tableLines[i])
	}
	if height >= 2 {
		ui.drawText(0, height-2, width, ui.statusLine())
	}
	if height >= 1 {
		ui.drawText(0, height-1, width, ui.promptLine())
		ui.drawCursor(width, height-1)
	}
	termbox.Flush()
}

func (ui *termUI) drawText(x, y, width int, text string) {
	if y < 0 {
		return
	}
	col := 0
	for _, ch := range text {
		if col >= width {
			break
		}
		termbox.SetCell(x+col, y, ch, termbox.ColorDefault, termbox.ColorDefault)
		col++
	}
}

func (ui *termUI) statusLine() string {
	if ui.busy {
		frame := spinnerFrames[int(time.Now().UnixMilli()/120)%len(spinnerFrames)]
		return fmt.Sprintf("%c running scenario %d", frame, ui.busyScenario)
	}
	return ui.statusMessage
}

func (ui *termUI) promptLine() string {
	if ui.mode == modePrompt {
		return "> " + string(ui.promptBuffer)
	}
	return "> press a digit to pick a scenario (1-7), q to quit"
}

func (ui *termUI) drawCursor(width, row int) {
	if row < 0 || width <= 0 || ui.mode != modePrompt {
		return
	}
	col := utf8.RuneCountInString("> " + string(ui.promptBuffer))
	if col >= width {
		col = width - 1
	}
	ch := ' '
	if ui.cursorVisible {
		ch = '_'
	}
	termbox.SetCell(col, row, ch, termbox.ColorDefault, termbox.ColorDefault)
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
