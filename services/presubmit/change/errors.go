// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package change

import "errors"

var (
	// ErrNilContext indicates a nil context was passed.
	ErrNilContext = errors.New("ctx must not be nil")

	// ErrNotGitRepo indicates the working directory is not inside a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrUnknownMode indicates an unsupported change detection mode.
	ErrUnknownMode = errors.New("unknown change mode")

	// ErrMissingRevision indicates commit or branch mode was requested without a revision.
	ErrMissingRevision = errors.New("revision required for this mode")

	// ErrInvalidPattern indicates a file filter regular expression failed to compile.
	ErrInvalidPattern = errors.New("invalid file pattern")
)
