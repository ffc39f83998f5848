package lifecycle

import (
	"github.com/provide-io/aipman/pkg/aip"
	"github.com/provide-io/aipman/pkg/aip/manifest"
)

// StateKind tells whether a package name is installed.
type StateKind int

const (
	Absent StateKind = iota
	Installed
)

// State is the lifecycle state of one package name. Version is set only when
// Kind is Installed.
type State struct {
	Kind    StateKind
	Version string
}

// StateOf derives the state of name from the installed manifest.
func StateOf(m manifest.Manifest, name string) State {
	if pkg, ok := m.Find(name); ok {
		return State{Kind: Installed, Version: pkg.Version}
	}
	return State{Kind: Absent}
}

func (s State) String() string {
	if s.Kind == Installed {
		return "installed(" + s.Version + ")"
	}
	return "absent"
}

// Status is the outcome of one orchestrator operation.
type Status int

const (
	StatusInstalled Status = iota
	StatusUpgraded
	StatusCurrent
	StatusNotFound
	StatusNotInstalled
	StatusDeclined
	StatusRemoved
	StatusExecuted
)

var statusNames = map[Status]string{
	StatusInstalled:    "installed",
	StatusUpgraded:     "upgraded",
	StatusCurrent:      "current",
	StatusNotFound:     "not-found",
	StatusNotInstalled: "not-installed",
	StatusDeclined:     "declined",
	StatusRemoved:      "removed",
	StatusExecuted:     "executed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Result reports what an operation did. Package is the entry acted upon,
// Previous the entry it replaced on upgrade. Suggestions carries similar
// catalog names when the requested one is missing. ExitCode is set by Run.
type Result struct {
	Status      Status
	Package     aip.Package
	Previous    aip.Package
	Suggestions []string
	ExitCode    int
}

// Changed reports whether the operation mutated the application directory.
func (r Result) Changed() bool {
	switch r.Status {
	case StatusInstalled, StatusUpgraded, StatusRemoved:
		return true
	}
	return false
}
