package tui

import (
	"time"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/refresh"
)

type pageMsg struct {
	result *refresh.Result
}

type refreshErrMsg struct {
	err error
}

type pollTickMsg time.Time

type updateAvailableMsg struct {
	version string
}
