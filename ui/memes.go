package ui

import (
	"context"
	"fmt"

	"chatiefy-tui/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) showMemes() {
	a.mu.Lock()
	a.memeList = tview.NewList()
	memeList := a.memeList
	a.mu.Unlock()

	memeList.SetBorder(true)
	memeList.SetBorderColor(ColorBorder)
	memeList.SetBackgroundColor(ColorBg)
	memeList.SetTitle(" Meme Browser ")
	memeList.SetTitleColor(ColorTitle)
	memeList.SetMainTextColor(ColorFg)
	memeList.SetSecondaryTextColor(ColorHighlight)
	memeList.SetSelectedTextColor(ColorTitle)
	memeList.SetSelectedBackgroundColor(ColorBar)

	statusBar := tview.NewTextView()
	statusBar.SetBackgroundColor(ColorBar)
	statusBar.SetTextColor(ColorTitle)
	statusBar.SetTextAlign(tview.AlignCenter)
	statusBar.SetText(" Enter:Details | F5:Load more | Esc:Back ")

	memeFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(memeList, 0, 1, true).
		AddItem(statusBar, 1, 0, false)

	memeFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			a.closeMemes()
			return nil
		case tcell.KeyF5:
			a.loadMoreMemes()
			return nil
		}
		return event
	})

	memeList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		all := a.gallery.Memes()
		if index < len(all) {
			a.showMemeDetails(all[index])
		}
	})

	a.pages.AddPage("memes", memeFlex, true, true)
	a.pages.SwitchToPage("memes")
	a.app.SetFocus(memeList)

	for _, m := range a.gallery.Memes() {
		a.addMemeItem(m)
	}
	if a.gallery.HasMore() && len(a.gallery.Memes()) == 0 {
		a.loadMoreMemes()
	}
}

func (a *App) addMemeItem(m models.Meme) {
	a.mu.Lock()
	memeList := a.memeList
	a.mu.Unlock()
	if memeList == nil {
		return
	}
	main := fmt.Sprintf("%s ─ by %s", escape(m.Filename), escape(m.Author))
	secondary := fmt.Sprintf("▲ %d  ▼ %d", m.Likes, m.Dislikes)
	memeList.AddItem(main, secondary, 0, nil)
}

func (a *App) loadMoreMemes() {
	id := a.store.Identity()
	go func() {
		added, err := a.gallery.LoadMore(context.Background(), id.AuthToken, id.User.Auth)
		if err != nil {
			a.log.Warn().Err(err).Msg("load memes failed")
			a.Error("Failed to load memes")
			return
		}
		if len(added) == 0 && !a.gallery.HasMore() {
			a.Info("No more memes to load")
			return
		}
		a.app.QueueUpdateDraw(func() {
			for _, m := range added {
				a.addMemeItem(m)
			}
		})
	}()
}

func (a *App) showMemeDetails(m models.Meme) {
	text := fmt.Sprintf(
		"%s\n\nBy %s\nPosted %s\n\n▲ %d   ▼ %d\n%s x %s\n\n%s",
		escape(m.Filename), escape(m.Author), escape(m.Date),
		m.Likes, m.Dislikes, m.Width, m.Height, escape(m.Path),
	)
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.pages.RemovePage("meme-details")
		})
	modal.SetBackgroundColor(ColorBg)
	modal.SetTextColor(ColorFg)
	modal.SetButtonBackgroundColor(ColorBar)
	modal.SetButtonTextColor(ColorTitle)
	a.pages.AddPage("meme-details", modal, true, true)
}

func (a *App) closeMemes() {
	a.mu.Lock()
	a.memeList = nil
	a.mu.Unlock()
	a.pages.RemovePage("memes")
	a.pages.SwitchToPage("chat")
	a.app.SetFocus(a.msgInput)
}
