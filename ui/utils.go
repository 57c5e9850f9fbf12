package ui

import (
	"time"

	"github.com/rivo/tview"
)

// formatTime renders a unix-seconds timestamp as local HH:MM
func formatTime(unix int64) string {
	return time.Unix(unix, 0).Local().Format("15:04")
}

// escape neutralizes tview color tags in user-supplied text
func escape(s string) string {
	return tview.Escape(s)
}
