// Package script runs line-oriented request scripts against an app without a
// terminal. Each line publishes one request or advances the loop:
//
//	# comment
//	load Game additive no-activate keep-previous
//	unload HUD
//	reload
//	activate Game
//	show settings
//	hide settings
//	toggle settings
//	tick 3
//	idle
package script

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/util"
)

// Op is a script command verb.
type Op string

const (
	OpLoad     Op = "load"
	OpUnload   Op = "unload"
	OpReload   Op = "reload"
	OpActivate Op = "activate"
	OpShow     Op = "show"
	OpHide     Op = "hide"
	OpToggle   Op = "toggle"
	OpTick     Op = "tick"
	OpIdle     Op = "idle"
)

var ops = []Op{OpLoad, OpUnload, OpReload, OpActivate, OpShow, OpHide, OpToggle, OpTick, OpIdle}

// Load flags.
const (
	FlagAdditive     = "additive"
	FlagNoActivate   = "no-activate"
	FlagKeepPrevious = "keep-previous"
)

var loadFlags = []string{FlagAdditive, FlagNoActivate, FlagKeepPrevious}

// Command is one parsed script line.
type Command struct {
	Line   int
	Op     Op
	Scene  string
	Screen screen.ID
	Ticks  int

	Additive     bool
	NoActivate   bool
	KeepPrevious bool
}

// String renders the command in canonical script syntax.
func (c Command) String() string {
	parts := []string{string(c.Op)}
	switch c.Op {
	case OpLoad:
		parts = append(parts, c.Scene)
		if c.Additive {
			parts = append(parts, FlagAdditive)
		}
		if c.NoActivate {
			parts = append(parts, FlagNoActivate)
		}
		if c.KeepPrevious {
			parts = append(parts, FlagKeepPrevious)
		}
	case OpUnload, OpActivate:
		parts = append(parts, c.Scene)
	case OpShow, OpHide, OpToggle:
		parts = append(parts, c.Screen.String())
	case OpTick:
		parts = append(parts, strconv.Itoa(c.Ticks))
	}
	return strings.Join(parts, " ")
}

// Event returns the request the command publishes, or nil for loop commands.
func (c Command) Event() event.Event {
	switch c.Op {
	case OpLoad:
		return event.LoadSceneRequest{
			Scene:          c.Scene,
			Additive:       c.Additive,
			ActivateOnLoad: !c.NoActivate,
			CancelPrevious: !c.KeepPrevious,
		}
	case OpUnload:
		return event.UnloadSceneRequest{Scene: c.Scene}
	case OpReload:
		return event.ReloadActiveRequest{}
	case OpActivate:
		return event.ActivateSceneRequest{Scene: c.Scene}
	case OpShow:
		return event.ShowView{Screen: c.Screen.String()}
	case OpHide:
		return event.HideView{Screen: c.Screen.String()}
	case OpToggle:
		return event.ToggleView{Screen: c.Screen.String()}
	}
	return nil
}

// Parser parses script lines. Scenes, when set, restricts scene arguments
// to the known catalogue.
type Parser struct {
	Scenes []string
}

// Parse reads every line of r. All line errors are reported together.
func (p Parser) Parse(r io.Reader) ([]Command, error) {
	var cmds []Command
	var errs []error

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		cmd, ok, err := p.ParseLine(n, sc.Text())
		switch {
		case err != nil:
			errs = append(errs, err)
		case ok:
			cmds = append(cmds, cmd)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cmds, nil
}

// ParseLine parses one line. Blank lines and comments yield ok == false.
func (p Parser) ParseLine(n int, line string) (Command, bool, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false, nil
	}

	cmd := Command{Line: n, Op: Op(strings.ToLower(fields[0]))}
	args := fields[1:]

	switch cmd.Op {
	case OpLoad:
		if len(args) == 0 {
			return cmd, false, lineError(n, "load needs a scene")
		}
		scene, err := p.scene(n, args[0])
		if err != nil {
			return cmd, false, err
		}
		cmd.Scene = scene
		for _, flag := range args[1:] {
			switch strings.ToLower(flag) {
			case FlagAdditive:
				cmd.Additive = true
			case FlagNoActivate:
				cmd.NoActivate = true
			case FlagKeepPrevious:
				cmd.KeepPrevious = true
			default:
				return cmd, false, lineError(n, fmt.Sprintf("unknown load flag %q%s", flag, util.DidYouMean(flag, loadFlags)))
			}
		}

	case OpUnload, OpActivate:
		if len(args) != 1 {
			return cmd, false, lineError(n, fmt.Sprintf("%s needs exactly one scene", cmd.Op))
		}
		scene, err := p.scene(n, args[0])
		if err != nil {
			return cmd, false, err
		}
		cmd.Scene = scene

	case OpShow, OpHide, OpToggle:
		if len(args) != 1 {
			return cmd, false, lineError(n, fmt.Sprintf("%s needs exactly one screen", cmd.Op))
		}
		id, err := screen.Parse(args[0])
		if err != nil {
			return cmd, false, fmt.Errorf("line %d: %w", n, err)
		}
		cmd.Screen = id

	case OpTick:
		cmd.Ticks = 1
		if len(args) > 1 {
			return cmd, false, lineError(n, "tick takes at most one count")
		}
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return cmd, false, lineError(n, fmt.Sprintf("invalid tick count %q", args[0]))
			}
			cmd.Ticks = v
		}

	case OpReload, OpIdle:
		if len(args) != 0 {
			return cmd, false, lineError(n, fmt.Sprintf("%s takes no arguments", cmd.Op))
		}

	default:
		names := make([]string, len(ops))
		for i, o := range ops {
			names[i] = string(o)
		}
		return cmd, false, lineError(n, fmt.Sprintf("unknown command %q%s", fields[0], util.DidYouMean(fields[0], names)))
	}
	return cmd, true, nil
}

func (p Parser) scene(n int, name string) (string, error) {
	if len(p.Scenes) == 0 || slices.Contains(p.Scenes, name) {
		return name, nil
	}
	return "", fmt.Errorf("line %d: unknown scene %q%s: %w", n, name, util.DidYouMean(name, p.Scenes), errors.ErrSceneNotFound)
}

func lineError(n int, msg string) error {
	return errors.NewValidationError(fmt.Sprintf("line %d: %s", n, msg))
}
