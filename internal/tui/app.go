// Package tui renders the front page in the terminal: the masthead, the
// composed columns, and a status bar. It owns the poll timer and the
// forced-refresh key; the actual pipeline lives in internal/refresh.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/browser"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/config"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/layout"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/refresh"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/store"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/update"
)

// storyRef locates one selectable story on the page.
type storyRef struct {
	col   int
	sec   int
	story int
}

type App struct {
	cfg   *config.Config
	ctrl  *refresh.Controller
	store *store.Store

	page   *layout.Page
	refs   []storyRef
	cursor int
	scroll int

	width  int
	height int

	spinner    spinner.Model
	refreshing bool
	err        error
	updatedAt_ time.Time

	version       string
	updateVersion string
}

// RunOpts holds everything the TUI needs at launch. Initial carries the
// result of the startup forced refresh; InitialErr its failure, if any.
type RunOpts struct {
	Cfg        *config.Config
	Controller *refresh.Controller
	Store      *store.Store
	Initial    *refresh.Result
	InitialErr error
	Version    string
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	a := &App{
		cfg:     opts.Cfg,
		ctrl:    opts.Controller,
		store:   opts.Store,
		spinner: sp,
		version: opts.Version,
		err:     opts.InitialErr,
	}
	if opts.Initial != nil && opts.Initial.Page != nil {
		a.setPage(opts.Initial.Page)
		a.updatedAt_ = time.Now()
	}
	return a
}

func Run(opts RunOpts) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.pollTick(), a.checkUpdate())
}

func (a *App) setPage(p *layout.Page) {
	a.page = p
	a.refs = a.refs[:0]
	for c, col := range p.Columns {
		for s, sec := range col.Sections {
			for i := range sec.Stories {
				a.refs = append(a.refs, storyRef{col: c, sec: s, story: i})
			}
		}
	}
	if a.cursor >= len(a.refs) {
		a.cursor = max(0, len(a.refs)-1)
	}
}

func (a *App) storyCount() int {
	return len(a.refs)
}

func (a *App) updatedAt() string {
	if a.updatedAt_.IsZero() {
		return ""
	}
	return a.updatedAt_.Format("15:04")
}

func (a *App) pollTick() tea.Cmd {
	return tea.Tick(a.cfg.PollDuration(), func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (a *App) refreshCmd(forced bool) tea.Cmd {
	ctrl := a.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := ctrl.Refresh(ctx, forced)
		if err != nil {
			if errors.Is(err, refresh.ErrInFlight) {
				return nil
			}
			return refreshErrMsg{err: err}
		}
		return pageMsg{result: res}
	}
}

func (a *App) checkUpdate() tea.Cmd {
	version := a.version
	return func() tea.Msg {
		res := update.Check(context.Background(), version)
		if res == nil {
			return nil
		}
		return updateAvailableMsg{version: res.LatestVersion}
	}
}

func (a *App) openStoryCmd(url string) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return refreshErrMsg{err: err}
		}
		// At-least-once click durability; a failed write is not worth
		// interrupting the reader for.
		if st != nil {
			st.RecordClick(url, time.Now())
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case pollTickMsg:
		cmds := []tea.Cmd{a.pollTick()}
		if !a.refreshing {
			a.refreshing = true
			cmds = append(cmds, a.refreshCmd(false), a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)

	case pageMsg:
		a.refreshing = false
		a.err = nil
		if msg.result != nil && !msg.result.Skipped && msg.result.Page != nil {
			a.setPage(msg.result.Page)
			a.updatedAt_ = time.Now()
		}
		return a, nil

	case refreshErrMsg:
		// Keep the last good page; just surface the error.
		a.refreshing = false
		a.err = msg.err
		return a, nil

	case updateAvailableMsg:
		a.updateVersion = msg.version
		return a, nil

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.refs)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "g":
		a.cursor = 0
		a.scroll = 0
		return a, nil
	case "G":
		a.cursor = max(0, len(a.refs)-1)
		return a, nil
	case "pgdown":
		a.scroll += a.height / 2
		return a, nil
	case "pgup":
		a.scroll -= a.height / 2
		if a.scroll < 0 {
			a.scroll = 0
		}
		return a, nil
	case "o", "enter":
		if st := a.selectedStory(); st != nil {
			return a, a.openStoryCmd(st.URL)
		}
		return a, nil
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, tea.Batch(a.refreshCmd(true), a.spinner.Tick)
		}
		return a, nil
	}
	return a, nil
}

func (a *App) selectedStory() *feed.Story {
	if a.page == nil || a.cursor < 0 || a.cursor >= len(a.refs) {
		return nil
	}
	ref := a.refs[a.cursor]
	return &a.page.Columns[ref.col].Sections[ref.sec].Stories[ref.story]
}
