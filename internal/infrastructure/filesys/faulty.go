package filesys

import (
	"os"
	"sync"
)

// Op names a filesystem call that [Faulty] can be told to fail.
type Op string

const (
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpRename Op = "rename"
	OpRemove Op = "remove"
	OpMkdir  Op = "mkdir"
	OpStat   Op = "stat"
)

// Faulty wraps an [FS] and returns a configured error from selected calls.
// It is safe for concurrent use.
type Faulty struct {
	fs FS

	mu     sync.Mutex
	faults map[Op]error
	calls  map[Op]int
}

// NewFaulty wraps fs with no faults configured.
func NewFaulty(fs FS) *Faulty {
	return &Faulty{
		fs:     fs,
		faults: make(map[Op]error),
		calls:  make(map[Op]int),
	}
}

// Fail makes every subsequent call of op return err. A nil err clears the fault.
func (f *Faulty) Fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.faults, op)
		return
	}
	f.faults[op] = err
}

// Calls returns how many times op was invoked, failed or not.
func (f *Faulty) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Faulty) check(op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.faults[op]
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.check(OpRead); err != nil {
		return nil, &os.PathError{Op: "read", Path: path, Err: err}
	}
	return f.fs.ReadFile(path)
}

func (f *Faulty) WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := f.check(OpWrite); err != nil {
		return &os.PathError{Op: "write", Path: path, Err: err}
	}
	return f.fs.WriteFile(path, data, perm)
}

func (f *Faulty) Rename(oldpath, newpath string) error {
	if err := f.check(OpRename); err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}
	return f.fs.Rename(oldpath, newpath)
}

func (f *Faulty) Remove(path string) error {
	if err := f.check(OpRemove); err != nil {
		return &os.PathError{Op: "remove", Path: path, Err: err}
	}
	return f.fs.Remove(path)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check(OpMkdir); err != nil {
		return &os.PathError{Op: "mkdir", Path: path, Err: err}
	}
	return f.fs.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.check(OpStat); err != nil {
		return nil, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return f.fs.Stat(path)
}

var _ FS = (*Faulty)(nil)
