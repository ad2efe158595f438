// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// defaultToolTimeout applies when a config leaves Timeout unset.
const defaultToolTimeout = 30 * time.Second

// CommandOutput is what a finished tool process produced.
type CommandOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ExecFunc runs name with args in dir.
//
// A non-zero exit is reported through ExitCode with a nil error. The error
// is non-nil only when the process could not be started or was killed.
type ExecFunc func(ctx context.Context, dir, name string, args ...string) (CommandOutput, error)

// LookPathFunc resolves an executable name, like exec.LookPath.
type LookPathFunc func(name string) (string, error)

func execCommand(ctx context.Context, dir, name string, args ...string) (CommandOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := CommandOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}

// runWithTimeout runs a tool and maps deadline and start failures to ToolError.
func runWithTimeout(ctx context.Context, run ExecFunc, timeout time.Duration, dir, tool, language string, args []string) (CommandOutput, error) {
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := run(cmdCtx, dir, tool, args...)
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		return out, NewToolError(tool, language, ErrToolTimeout).WithOutput(string(out.Stderr))
	}
	if err != nil {
		return out, NewToolError(tool, language, ErrToolFailed).WithOutput(err.Error())
	}
	return out, nil
}
