package domain

import (
	"fmt"
	"strings"
	"time"
)

// Family is a tool group selected by the name the dispatcher was invoked as.
type Family struct {
	Name       string   `json:"name"`
	Programs   []string `json:"programs"`
	CommandDir string   `json:"commandDir"`
	Readme     string   `json:"readme"`
	SelfUpdate bool     `json:"selfUpdate"`
}

// CommandSpec documents one command for display.
type CommandSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CommandGroup is one category of a family catalog.
type CommandGroup struct {
	Category string        `json:"category"`
	Commands []CommandSpec `json:"commands"`
}

// CommandKind tells how a resolved artifact is launched.
type CommandKind string

const (
	// KindScript artifacts run through the configured interpreter.
	KindScript CommandKind = "script"
	// KindShell artifacts are executed directly.
	KindShell CommandKind = "shell"
)

type ResolvedCommand struct {
	Name   string      `json:"name"`
	Path   string      `json:"path"`
	Kind   CommandKind `json:"kind"`
	Family string      `json:"family"`
}

type Mode string

const (
	ModeUsage   Mode = "usage"
	ModePlain   Mode = "plain"
	ModeHelp    Mode = "help"
	ModeProfile Mode = "profile"
	ModeUpdate  Mode = "update"
)

const (
	VerbHelp    = "help"
	VerbProfile = "profile"
	VerbUpdate  = "update"
)

// InvocationRequest is the parsed user intent. Args are forwarded verbatim.
type InvocationRequest struct {
	Mode    Mode
	Command string
	Args    []string
}

// ParseRequest maps raw arguments to a request. The update verb is only
// reserved when allowUpdate is set; otherwise "update" is a command name.
func ParseRequest(args []string, allowUpdate bool) InvocationRequest {
	if len(args) == 0 {
		return InvocationRequest{Mode: ModeUsage}
	}
	switch args[0] {
	case VerbHelp:
		if len(args) < 2 {
			return InvocationRequest{Mode: ModeUsage}
		}
		return InvocationRequest{Mode: ModeHelp, Command: args[1]}
	case VerbProfile:
		if len(args) < 2 {
			return InvocationRequest{Mode: ModeUsage}
		}
		return InvocationRequest{Mode: ModeProfile, Command: args[1], Args: cloneArgs(args[2:])}
	case VerbUpdate:
		if allowUpdate {
			return InvocationRequest{Mode: ModeUpdate, Args: cloneArgs(args[1:])}
		}
	}
	return InvocationRequest{Mode: ModePlain, Command: args[0], Args: cloneArgs(args[1:])}
}

func cloneArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, len(args))
	copy(out, args)
	return out
}

// LaunchSpec is everything the launcher needs to start a child process.
// Env is the complete child environment.
type LaunchSpec struct {
	Path string
	Args []string
	Env  []string
	Dir  string
}

// Argv returns the full argument vector including the program.
func (s LaunchSpec) Argv() []string {
	argv := make([]string, 0, len(s.Args)+1)
	argv = append(argv, s.Path)
	return append(argv, s.Args...)
}

func (s LaunchSpec) String() string {
	return strings.Join(s.Argv(), " ")
}

// VersionInfo is computed per invocation and never persisted.
type VersionInfo struct {
	Label     string
	Revision  string
	Timestamp time.Time
}

func (v VersionInfo) String() string {
	label := strings.TrimSpace(v.Label)
	if label == "" {
		label = UnknownVersionLabel
	}
	if v.Revision == "" {
		return label
	}
	if v.Timestamp.IsZero() {
		return fmt.Sprintf("%s-%s", label, v.Revision)
	}
	return fmt.Sprintf("%s-%s (%s)", label, v.Revision, v.Timestamp.Format(DefaultTimestampLayout))
}
