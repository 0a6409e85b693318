package activity

import (
	"context"
	"path/filepath"

	"github.com/prometheus/procfs"
)

type Process struct {
	PID  int
	Name string
	Exe  string
}

// ProcessLister takes a snapshot of the running processes.
type ProcessLister interface {
	Processes(ctx context.Context) ([]Process, error)
}

// ProcLister reads the process table from a procfs mount.
type ProcLister struct {
	fs procfs.FS
}

func NewProcLister(mountPoint string) (*ProcLister, error) {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, err
	}
	return &ProcLister{fs: fs}, nil
}

func (l *ProcLister) Processes(ctx context.Context) ([]Process, error) {
	procs, err := l.fs.AllProcs()
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// processes can exit mid-scan
		comm, err := p.Comm()
		if err != nil {
			continue
		}
		exe, _ := p.Executable()
		out = append(out, Process{PID: p.PID, Name: comm, Exe: exe})
	}
	return out, nil
}

// names returns every name a process can be matched by: its command name
// and the base name of its executable.
func (p Process) names() []string {
	names := []string{p.Name}
	if p.Exe != "" {
		if base := filepath.Base(p.Exe); base != p.Name {
			names = append(names, base)
		}
	}
	return names
}
