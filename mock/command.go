package mock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ubuntu/wslapi/internal/handle"
)

// shell interprets the few shell constructs that tests feed to WslLaunch:
// statements separated by newlines or ';', chained with '&&', with quoting,
// $VAR expansion and a trailing '>&2' redirection.
//
// Supported builtins are exit, true, false, echo, cat, pwd, env and sleep.
// Anything else is "not found" and sets the status to 127.
type shell struct {
	stdin, stdout, stderr handle.Handle

	env    map[string]string
	useCWD bool

	status uint32
}

// killedStatus is the exit code of a process killed by unregistering its distro.
const killedStatus = 1

// Commands that start a shell reading its script from stdin.
var defaultShells = map[string]bool{
	"":          true,
	"sh":        true,
	"bash":      true,
	"/bin/sh":   true,
	"/bin/bash": true,
}

// run executes command and returns its exit code. Exit codes are truncated to
// their low byte, like a POSIX shell does.
func (sh *shell) run(ctx context.Context, command string) uint32 {
	script := command
	if defaultShells[strings.TrimSpace(command)] {
		in, err := sh.readStdin()
		if err != nil {
			sh.write(sh.stderr, fmt.Sprintf("sh: cannot read standard input: %v\n", err))
			return 2
		}
		script = string(in)
	}

	for _, line := range strings.Split(script, "\n") {
		for _, stmt := range strings.Split(line, ";") {
			for i, cmd := range strings.Split(stmt, "&&") {
				if i > 0 && sh.status != 0 {
					break
				}
				if exited := sh.exec(ctx, cmd); exited {
					return sh.status
				}
				if ctx.Err() != nil {
					return killedStatus
				}
			}
		}
	}

	return sh.status
}

// exec runs a single command. It returns true if the shell must exit.
func (sh *shell) exec(ctx context.Context, cmd string) (exited bool) {
	args := sh.split(cmd)
	if len(args) == 0 {
		return false
	}

	out := sh.stdout
	if args[len(args)-1] == ">&2" {
		out = sh.stderr
		args = args[:len(args)-1]
	}

	last := sh.status
	sh.status = 0
	switch args[0] {
	case "exit":
		if len(args) < 2 {
			sh.status = last
			return true
		}
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			sh.write(sh.stderr, fmt.Sprintf("sh: 1: exit: Illegal number: %s\n", args[1]))
			sh.status = 2
			return true
		}
		sh.status = uint32(n) & 0xFF
		return true
	case "true", ":":
	case "false":
		sh.status = 1
	case "echo":
		sh.write(out, strings.Join(args[1:], " ")+"\n")
	case "cat":
		in, err := sh.readStdin()
		if err != nil {
			sh.status = 1
		}
		sh.write(out, string(in))
	case "pwd":
		sh.write(out, sh.pwd()+"\n")
	case "env":
		keys := make([]string, 0, len(sh.env))
		for k := range sh.env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sh.write(out, fmt.Sprintf("%s=%s\n", k, sh.env[k]))
		}
	case "sleep":
		if len(args) < 2 {
			sh.status = 1
			break
		}
		d, err := time.ParseDuration(args[1] + "s")
		if err != nil {
			sh.status = 1
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(d):
		}
	default:
		sh.write(sh.stderr, fmt.Sprintf("sh: 1: %s: not found\n", args[0]))
		sh.status = 127
	}

	return false
}

// split breaks a command into words, honouring single and double quotes and
// expanding variables outside of single quotes. Comments are dropped.
func (sh *shell) split(s string) (args []string) {
	var word strings.Builder
	inWord := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			j := strings.IndexByte(s[i+1:], c)
			if j < 0 {
				j = len(s) - i - 1
			}
			quoted := s[i+1 : i+1+j]
			if c == '"' {
				quoted = sh.expand(quoted)
			}
			word.WriteString(quoted)
			inWord = true
			i += j + 1
		case c == ' ' || c == '\t' || c == '\r':
			if inWord {
				args = append(args, word.String())
				word.Reset()
				inWord = false
			}
		case c == '#' && !inWord:
			i = len(s)
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t\r'\"", rune(s[j])) {
				j++
			}
			word.WriteString(sh.expand(s[i:j]))
			inWord = true
			i = j - 1
		}
	}

	if inWord {
		args = append(args, word.String())
	}

	return args
}

func (sh *shell) expand(s string) string {
	return os.Expand(s, func(key string) string {
		if key == "?" {
			return strconv.FormatUint(uint64(sh.status), 10)
		}
		return sh.env[key]
	})
}

// pwd is the home directory of root, or the caller's directory as seen from
// inside the distro.
func (sh *shell) pwd() string {
	if !sh.useCWD {
		return "/root"
	}

	wd, err := os.Getwd()
	if err != nil {
		return "/"
	}

	vol := filepath.VolumeName(wd)
	if len(vol) != 2 || vol[1] != ':' {
		return filepath.ToSlash(wd)
	}

	return "/mnt/" + strings.ToLower(vol[:1]) + filepath.ToSlash(wd[len(vol):])
}

func (sh *shell) readStdin() ([]byte, error) {
	if sh.stdin == handle.Null {
		return nil, nil
	}
	return handle.ReadAll(sh.stdin)
}

func (sh *shell) write(h handle.Handle, s string) {
	if h == handle.Null || s == "" {
		return
	}
	_ = handle.WriteAll(h, []byte(s))
}
