package main

import (
	"fmt"
	"os"

	"ntu-food/internal/notify"
)

// terminalToaster renders toasts as single lines on stderr so they do
// not interleave with command output.
type terminalToaster struct{}

func (terminalToaster) Show(toast notify.Toast) {
	var prefix string
	switch toast.Level {
	case notify.LevelSuccess:
		prefix = "✔"
	case notify.LevelError:
		prefix = "✖"
	case notify.LevelWarning:
		prefix = "!"
	default:
		prefix = "ℹ"
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, toast.Message)
}

// terminalTonePlayer prints the bell character once per sequence; real
// audio synthesis is a browser concern.
type terminalTonePlayer struct{}

func (terminalTonePlayer) Play(tones []notify.Tone) {
	if len(tones) > 0 {
		fmt.Fprint(os.Stderr, "\a")
	}
}
