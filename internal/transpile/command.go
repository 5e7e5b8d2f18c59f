package transpile

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Command 通过外部进程转译：执行 argv + file，工作目录为 root。
// 成功时返回 stdout，失败时返回 stderr（为空时退回进程错误）。
type Command struct {
	argv []string
}

// NewCommand builds a subprocess transpiler; argv must name at least the program.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, fmt.Errorf("transpile command is empty")
	}
	return &Command{argv: append([]string(nil), argv...)}, nil
}

// Transpile runs the command; ctx cancellation kills the process.
func (c *Command) Transpile(ctx context.Context, root, file string) Result {
	args := append(append([]string(nil), c.argv[1:]...), file)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Result{Output: msg, Failed: true}
	}
	return Result{Output: strings.TrimSpace(stdout.String())}
}
