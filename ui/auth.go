package ui

import (
	"context"
	"fmt"
	"regexp"

	"chatiefy-tui/models"
	"chatiefy-tui/session"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]*$`)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
)

func (a *App) showUsernameForm() {
	form := tview.NewForm()
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(ColorField)
	form.SetFieldTextColor(ColorFg)
	form.SetLabelColor(ColorHighlight)
	form.SetButtonBackgroundColor(ColorBar)
	form.SetButtonTextColor(ColorTitle)
	form.SetBorder(true)
	form.SetBorderColor(ColorBorder)
	form.SetTitle(" Chatiefy ─ Choose a username ")
	form.SetTitleColor(ColorTitle)

	statusText := tview.NewTextView()
	statusText.SetBackgroundColor(ColorBg)
	statusText.SetTextColor(tcell.ColorRed)
	statusText.SetTextAlign(tview.AlignCenter)
	statusText.SetDynamicColors(true)

	suggestionList := tview.NewList()
	suggestionList.SetBackgroundColor(ColorBg)
	suggestionList.SetMainTextColor(ColorFg)
	suggestionList.SetSelectedBackgroundColor(ColorBar)
	suggestionList.ShowSecondaryText(false)

	usernameField := tview.NewInputField()
	usernameField.SetLabel("Username: ")
	usernameField.SetFieldWidth(30)
	usernameField.SetBackgroundColor(ColorBg)
	usernameField.SetAcceptanceFunc(func(textToCheck string, _ rune) bool {
		return len(textToCheck) <= usernameMaxLen && usernamePattern.MatchString(textToCheck)
	})

	form.AddFormItem(usernameField)

	suggestionList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		usernameField.SetText(mainText)
		suggestionList.Clear()
		a.app.SetFocus(form)
	})

	form.AddButton("Start", func() {
		username := usernameField.GetText()
		if len(username) < usernameMinLen {
			statusText.SetText(fmt.Sprintf("[red]Username must be at least %d characters[-]", usernameMinLen))
			return
		}
		a.registerGuest(username, statusText, suggestionList)
	})

	form.AddButton("Quit", func() {
		a.app.Stop()
	})

	formFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(statusText, 1, 0, false).
		AddItem(suggestionList, 4, 0, false)

	width := 54
	height := 16

	modal := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(formFlex, width, 0, true).
			AddItem(nil, 0, 1, false), height, 0, true).
		AddItem(nil, 0, 1, false)

	a.pages.AddPage("auth", modal, true, true)
	a.app.SetFocus(form)
}

// registerGuest checks availability and registers the guest account.
// Network calls run off the event loop, like every other remote call here.
func (a *App) registerGuest(username string, statusText *tview.TextView, suggestionList *tview.List) {
	statusText.SetText("Checking username...")
	suggestionList.Clear()

	go func() {
		ctx := context.Background()

		check, err := a.api.CheckUsername(ctx, username)
		if err != nil {
			a.app.QueueUpdateDraw(func() {
				statusText.SetText(fmt.Sprintf("[red]%v[-]", err))
			})
			return
		}
		if !check.Available {
			a.app.QueueUpdateDraw(func() {
				msg := check.Error
				if msg == "" {
					msg = "Username is taken"
				}
				statusText.SetText(fmt.Sprintf("[red]%s[-]", msg))
				for _, s := range check.Suggestions {
					suggestionList.AddItem(s, "", 0, nil)
				}
				if suggestionList.GetItemCount() > 0 {
					a.app.SetFocus(suggestionList)
				}
			})
			return
		}

		a.app.QueueUpdateDraw(func() {
			statusText.SetText("Registering...")
		})

		reg, err := a.api.RegisterGuest(ctx, username)
		if err != nil {
			a.app.QueueUpdateDraw(func() {
				statusText.SetText(fmt.Sprintf("[red]%v[-]", err))
			})
			return
		}

		user := models.User{
			Username: reg.Details.Username,
			Auth:     reg.Auth,
			Avatar:   reg.Details.Avatar,
		}
		a.store.SetUser(user, reg.Auth)
		if err := a.idstore.Save(session.Identity{User: user, AuthToken: reg.Auth, Authenticated: true}); err != nil {
			a.log.Warn().Err(err).Msg("save identity failed")
		}
		a.log.Info().Str("username", user.Username).Msg("registered")

		a.app.QueueUpdateDraw(func() {
			a.showChatScreen()
		})
	}()
}
