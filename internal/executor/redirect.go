package executor

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/marcelocantos/treesh/internal/tree"
)

// openInput opens the stdin redirect of n read-only.
func openInput(n *tree.Node) (*os.File, error) {
	return os.Open(n.In)
}

// openOutput opens the stdout redirect of n write-only, creating it with
// mode 0644 and truncating or appending per n.Append.
func openOutput(n *tree.Node) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if n.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(n.Out, flags, 0644)
}

// redirects opens the files named by n, falling back to stdin and stdout
// for streams n does not redirect. closeFiles releases only what was
// opened here.
func redirects(n *tree.Node, stdin, stdout *os.File) (in, out *os.File, closeFiles func(), err error) {
	var opened []*os.File
	closeFiles = func() {
		for _, f := range opened {
			f.Close()
		}
	}

	in, out = stdin, stdout
	if n.In != "" {
		if in, err = openInput(n); err != nil {
			return nil, nil, nil, err
		}
		opened = append(opened, in)
	}
	if n.Out != "" {
		if out, err = openOutput(n); err != nil {
			closeFiles()
			return nil, nil, nil, err
		}
		opened = append(opened, out)
	}
	return in, out, closeFiles, nil
}

func localNames(locals map[string]string) []string {
	names := make([]string, 0, len(locals))
	for name := range locals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// localEnv renders locals as NAME=value pairs in name order.
func localEnv(locals map[string]string) []string {
	env := make([]string, 0, len(locals))
	for _, name := range localNames(locals) {
		env = append(env, name+"="+locals[name])
	}
	return env
}

// install applies the redirections and locals of n to the current process:
// redirect files replace fds 0 and 1, locals enter the environment. Only
// child processes call it.
func install(n *tree.Node) error {
	if n.In != "" {
		f, err := openInput(n)
		if err != nil {
			return err
		}
		if err := dupOnto(f, 0); err != nil {
			return err
		}
	}
	if n.Out != "" {
		f, err := openOutput(n)
		if err != nil {
			return err
		}
		if err := dupOnto(f, 1); err != nil {
			return err
		}
	}
	for _, name := range localNames(n.Locals) {
		if err := os.Setenv(name, n.Locals[name]); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}

func dupOnto(f *os.File, fd int) error {
	defer f.Close()
	if err := unix.Dup2(int(f.Fd()), fd); err != nil {
		return fmt.Errorf("dup %s: %w", f.Name(), err)
	}
	return nil
}
