// Package control defines the command messages the UI, the poll ticker and
// the OS hotkey callback send to the application command loop. The loop is
// the only place state machines are driven from, which keeps every
// transition serialized without locks between them.
package control

import (
	"MatchLens/game"
	"MatchLens/hotkey"
)

// CommandType enumerates supported command operations.
type CommandType int

const (
	CmdStartup CommandType = iota
	CmdPoll
	CmdReconnect
	CmdSessionReady
	CmdSetAutoLock
	CmdStartCapture
	CmdCaptureKey
	CmdCancelCapture
	CmdToggleWindow
	CmdOpenSettings
	CmdOpenPlayer
	CmdClosePanel
	CmdSetLocale
	CmdShutdown
)

var commandNames = [...]string{
	CmdStartup:       "startup",
	CmdPoll:          "poll",
	CmdReconnect:     "reconnect",
	CmdSessionReady:  "session_ready",
	CmdSetAutoLock:   "set_auto_lock",
	CmdStartCapture:  "start_capture",
	CmdCaptureKey:    "capture_key",
	CmdCancelCapture: "cancel_capture",
	CmdToggleWindow:  "toggle_window",
	CmdOpenSettings:  "open_settings",
	CmdOpenPlayer:    "open_player",
	CmdClosePanel:    "close_panel",
	CmdSetLocale:     "set_locale",
	CmdShutdown:      "shutdown",
}

func (t CommandType) String() string {
	if int(t) >= 0 && int(t) < len(commandNames) {
		return commandNames[t]
	}
	return "unknown"
}

// Command is the message sent to the loop. Only the fields relevant to Type
// are read. The optional Reply channel receives the handler's error.
type Command struct {
	Type   CommandType
	Key    hotkey.KeyEvent      // CmdCaptureKey
	Player *game.PlayerSnapshot // CmdOpenPlayer
	Agent  *string              // CmdSetAutoLock, nil clears
	Locale string               // CmdSetLocale
	Reply  chan error
}
