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

import (
	"fmt"
	"io"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// FromPatch builds a Change from a unified diff.
//
// Description:
//
//	Each file section becomes one AffectedFile. An original name of
//	/dev/null marks an added file, a new name of /dev/null a deleted one,
//	and differing names a rename. The conventional a/ and b/ prefixes are
//	stripped. Contents are not taken from the patch; call LoadContents.
//
// Inputs:
//
//	repoRoot - Directory the patch paths are relative to.
//	r - The diff.
//
// Outputs:
//
//	*Change - Files in patch order.
//	error - Non-nil if the diff cannot be parsed.
func FromPatch(repoRoot string, r io.Reader) (*Change, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(r).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parsing patch: %w", err)
	}

	files := make([]AffectedFile, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		orig := stripDiffPrefix(fd.OrigName)
		updated := stripDiffPrefix(fd.NewName)

		var f AffectedFile
		switch {
		case orig == devNull && updated == devNull:
			continue
		case orig == devNull:
			f = NewAffectedFile(updated, ActionAdded)
		case updated == devNull:
			f = NewAffectedFile(orig, ActionDeleted)
		case orig != "" && orig != updated:
			f = NewAffectedFile(updated, ActionRenamed)
			f.OldPath = NormalizePath(orig)
		default:
			f = NewAffectedFile(updated, ActionModified)
		}
		files = append(files, f)
	}

	return New(repoRoot, files), nil
}

func stripDiffPrefix(name string) string {
	name = strings.TrimSpace(name)
	if name == devNull {
		return name
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}
