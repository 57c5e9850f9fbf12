package ui

import (
	"context"
	"fmt"
	"strings"

	"chatiefy-tui/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) showChatScreen() {
	a.pages.RemovePage("auth")
	a.pages.RemovePage("background")

	chatPage := a.createChatPage()
	a.pages.AddPage("chat", chatPage, true, true)
	a.pages.SwitchToPage("chat")

	a.refreshChat()
	a.app.SetFocus(a.msgInput)
}

func (a *App) createChatPage() tview.Primitive {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Partner / status line at the top
	a.partnerBar = tview.NewTextView()
	a.partnerBar.SetBorder(true)
	a.partnerBar.SetBorderColor(ColorBorder)
	a.partnerBar.SetBackgroundColor(ColorBg)
	a.partnerBar.SetTitleColor(ColorTitle)
	a.partnerBar.SetTextColor(ColorFg)
	a.partnerBar.SetDynamicColors(true)
	a.partnerBar.SetTextAlign(tview.AlignCenter)

	// Conversation view
	a.chatView = tview.NewTextView()
	a.chatView.SetBorder(true)
	a.chatView.SetBorderColor(ColorBorder)
	a.chatView.SetBackgroundColor(ColorBg)
	a.chatView.SetTitle(" Conversation ")
	a.chatView.SetTitleColor(ColorTitle)
	a.chatView.SetTextColor(ColorFg)
	a.chatView.SetDynamicColors(true)
	a.chatView.SetScrollable(true)
	a.chatView.ScrollToEnd()

	// Message input
	a.msgInput = tview.NewInputField()
	a.msgInput.SetLabel("> ")
	a.msgInput.SetFieldWidth(0)
	a.msgInput.SetBackgroundColor(ColorBg)
	a.msgInput.SetFieldBackgroundColor(ColorField)
	a.msgInput.SetFieldTextColor(ColorFg)
	a.msgInput.SetLabelColor(ColorHighlight)
	a.msgInput.SetBorder(true)
	a.msgInput.SetBorderColor(ColorBorder)
	a.msgInput.SetTitle(" Message ")
	a.msgInput.SetTitleColor(ColorTitle)

	a.msgInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			text := strings.TrimSpace(a.msgInput.GetText())
			if text != "" && a.store.Status() == models.StatusConnected {
				a.msgInput.SetText("")
				go a.driver.Send(context.Background(), text)
			}
		}
	})

	// Notice line for toasts from the driver and poller
	a.noticeView = tview.NewTextView()
	a.noticeView.SetBackgroundColor(ColorBg)
	a.noticeView.SetTextAlign(tview.AlignCenter)
	a.noticeView.SetDynamicColors(true)

	// Status bar at the bottom
	a.statusBar = tview.NewTextView()
	a.statusBar.SetBackgroundColor(ColorBar)
	a.statusBar.SetTextColor(ColorTitle)
	a.statusBar.SetTextAlign(tview.AlignCenter)
	a.statusBar.SetText(" F2:Find | F3:Next | F4:End | F5:Memes | F8:Logout | F10:Quit ")

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.partnerBar, 3, 0, false).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.noticeView, 1, 0, false).
		AddItem(a.msgInput, 3, 0, true).
		AddItem(a.statusBar, 1, 0, false)
	mainFlex.SetBackgroundColor(ColorBg)

	mainFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF2:
			a.startChat()
			return nil
		case tcell.KeyF3:
			a.nextChat()
			return nil
		case tcell.KeyF4:
			a.endChat()
			return nil
		case tcell.KeyF5:
			a.showMemes()
			return nil
		case tcell.KeyF8:
			a.logout()
			return nil
		case tcell.KeyF10:
			a.quit()
			return nil
		case tcell.KeyPgUp:
			row, col := a.chatView.GetScrollOffset()
			a.chatView.ScrollTo(row-10, col)
			return nil
		case tcell.KeyPgDn:
			row, col := a.chatView.GetScrollOffset()
			a.chatView.ScrollTo(row+10, col)
			return nil
		}
		return event
	})

	return mainFlex
}

func (a *App) startChat() {
	st := a.store.Status()
	if st != models.StatusIdle && st != models.StatusDisconnected {
		return
	}
	go a.driver.Start(context.Background())
}

func (a *App) nextChat() {
	if a.store.Status() != models.StatusConnected {
		return
	}
	go a.driver.Next(context.Background())
}

func (a *App) endChat() {
	if _, _, ok := a.store.Partner(); !ok {
		return
	}
	go a.driver.Disconnect(context.Background())
}

func (a *App) logout() {
	go func() {
		a.driver.Disconnect(context.Background())
		a.store.Logout()
		if err := a.idstore.Clear(); err != nil {
			a.log.Warn().Err(err).Msg("clear identity failed")
		}
		a.app.QueueUpdateDraw(func() {
			a.pages.RemovePage("chat")
			background := tview.NewBox()
			background.SetBackgroundColor(ColorBackdrop)
			a.pages.AddPage("background", background, true, true)
			a.showUsernameForm()
		})
	}()
}

// refreshChat redraws the partner bar and the conversation from the store
func (a *App) refreshChat() {
	a.mu.Lock()
	partnerBar := a.partnerBar
	chatView := a.chatView
	a.mu.Unlock()
	if partnerBar == nil || chatView == nil {
		return
	}

	identity := a.store.Identity()
	partnerName, _, _ := a.store.Partner()

	switch a.store.Status() {
	case models.StatusSearching:
		partnerBar.SetText("[yellow]Searching for a stranger...[-]")
	case models.StatusConnected:
		partnerBar.SetText(fmt.Sprintf("[green]● %s[-]", escape(partnerName)))
	case models.StatusDisconnected:
		partnerBar.SetText(fmt.Sprintf("[gray]○ %s left ─ F2 to find someone new[-]", escape(partnerName)))
	default:
		partnerBar.SetText("[gray]Press F2 to find a stranger[-]")
	}
	partnerBar.SetTitle(fmt.Sprintf(" Chatiefy [%s] ", identity.User.Username))

	messages := a.store.Messages()
	if len(messages) == 0 {
		if a.store.Status() == models.StatusConnected {
			chatView.SetText("\n[gray]Say hello to start the conversation![-]")
		} else {
			chatView.SetText("")
		}
		return
	}

	var sb strings.Builder
	for _, msg := range messages {
		timeStr := formatTime(msg.Time)
		if msg.Sender == identity.User.Username {
			sb.WriteString(fmt.Sprintf("[gray]%s[-] [white]→ %s[-]\n", timeStr, escape(msg.Text)))
		} else {
			sb.WriteString(fmt.Sprintf("[gray]%s[-] [yellow]← %s[-]\n", timeStr, escape(msg.Text)))
		}
	}
	chatView.SetText(sb.String())
	chatView.ScrollToEnd()
}
