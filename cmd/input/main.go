// Command input is an event printer for the keyboard engine: it puts
// the terminal in raw mode, decodes stdin, and echoes every key and
// mouse report it sees. Quit with 'q' or Ctrl+C.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/exp/slog"
	"golang.org/x/term"

	"github.com/tuikit/keyboard"
)

func main() {
	var (
		debug  = flag.Bool("debug", false, "log engine internals to stderr")
		mouse  = flag.Bool("mouse", false, "enable mouse protocol sniffing")
		config = flag.String("config", "", "TOML options file")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		AddSource:  true,
		Level:      level,
		TimeFormat: "15:04:05.000",
	}))

	opts := keyboard.Options{
		UTF8:          true,
		MouseTracking: *mouse,
		Logger:        logger,
	}
	if *config != "" {
		var err error
		opts, err = keyboard.OptionsFromFile(*config, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	caps, err := keyboard.TerminfoEntries("")
	if err != nil {
		logger.Warn("no terminfo catalog, using built-in keys only", "error", err)
	}
	opts.CapabilityKeys = append(opts.CapabilityKeys, caps...)

	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer term.Restore(int(os.Stdin.Fd()), state)

	kb := keyboard.New(opts)

	quit := false
	kb.OnKeyPressed = func(k keyboard.Key) {
		fmt.Printf("press   %-12s width=%d\r\n", k, k.Width(keyboard.WidthUnicodeStd))
		if k == 'q' || k == 0x03 {
			quit = true
		}
	}
	kb.OnKeyReleased = func(k keyboard.Key) {
		fmt.Printf("release %s\r\n", k)
	}
	kb.OnEscapePressed = func() {
		fmt.Printf("press   <esc>\r\n")
	}
	kb.OnMouseTracking = func(ev keyboard.MouseEvent) {
		fmt.Printf("mouse   %s %q\r\n", ev.Protocol, ev.Seq)
	}

	for !quit {
		if kb.IsKeyPressed(100 * time.Millisecond) {
			kb.Fetch()
		}
		kb.EscapeKeyHandling()
		kb.ProcessQueuedInput(func() bool { return quit })
	}
}
