package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chatiefy-tui/api"
	"chatiefy-tui/chat"
	"chatiefy-tui/memes"
	"chatiefy-tui/session"

	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

// App is the main application
type App struct {
	app     *tview.Application
	pages   *tview.Pages
	store   *session.Store
	idstore *session.IdentityStore
	driver  *chat.Driver
	gallery *memes.Gallery
	api     *api.Client
	log     zerolog.Logger

	mu         sync.Mutex
	partnerBar *tview.TextView
	chatView   *tview.TextView
	msgInput   *tview.InputField
	noticeView *tview.TextView
	statusBar  *tview.TextView
	memeList   *tview.List
}

// NewApp creates a new application instance. The driver is attached
// separately because it needs the app as its notifier.
func NewApp(store *session.Store, idstore *session.IdentityStore, gallery *memes.Gallery, client *api.Client, log zerolog.Logger) *App {
	return &App{
		store:   store,
		idstore: idstore,
		gallery: gallery,
		api:     client,
		log:     log,
	}
}

// SetDriver attaches the chat lifecycle driver
func (a *App) SetDriver(d *chat.Driver) {
	a.driver = d
}

// Run starts the application
func (a *App) Run() error {
	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	background := tview.NewBox()
	background.SetBackgroundColor(ColorBackdrop)
	a.pages.AddPage("background", background, true, true)

	a.store.SetOnChange(func() {
		a.app.QueueUpdateDraw(a.refreshChat)
	})

	if a.store.Identity().Authenticated {
		a.showChatScreen()
	} else {
		a.showUsernameForm()
	}

	return a.app.SetRoot(a.pages, true).EnableMouse(false).Run()
}

// quit exits the application. It runs on the event goroutine, so it
// must not go through the driver, whose notices would re-enter the
// event loop; the disconnect is a bounded best-effort call instead.
func (a *App) quit() {
	if a.driver != nil {
		a.driver.StopPolling()
	}
	if _, partnerID, ok := a.store.Partner(); ok {
		id := a.store.Identity()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.api.Disconnect(ctx, id.AuthToken, id.User.Auth, partnerID); err != nil {
			a.log.Warn().Err(err).Msg("disconnect on quit failed")
		}
	}
	a.app.Stop()
}

// Info shows an informational notice
func (a *App) Info(text string) {
	a.setNotice(fmt.Sprintf("[aqua]%s[-]", text))
}

// Success shows a success notice
func (a *App) Success(text string) {
	a.setNotice(fmt.Sprintf("[green]%s[-]", text))
}

// Error shows an error notice
func (a *App) Error(text string) {
	a.setNotice(fmt.Sprintf("[red]%s[-]", text))
}

// setNotice updates the notice line. Notices arrive from driver and
// poller goroutines, so the update goes through the event loop.
func (a *App) setNotice(markup string) {
	if a.app == nil {
		return
	}
	a.app.QueueUpdateDraw(func() {
		a.mu.Lock()
		view := a.noticeView
		a.mu.Unlock()
		if view != nil {
			view.SetText(markup)
		}
	})
}
