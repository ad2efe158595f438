// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lint runs external linters and formatters over the files of a change.
//
// Nothing here implements a lint rule. The package shells out to established
// tools, parses their machine-readable output, and maps findings onto a
// common severity model that presubmit checks turn into results.
//
// # Linters
//
//	| Language   | Linter         | Command             |
//	|------------|----------------|---------------------|
//	| Go         | golangci-lint  | golangci-lint run   |
//	| Python     | Ruff           | ruff check          |
//	| TypeScript | ESLint         | eslint              |
//	| JavaScript | ESLint         | eslint              |
//
// # Formatters
//
//	| Flag      | Tool     | Dry-run invocation          |
//	|-----------|----------|-----------------------------|
//	| --go      | gofmt    | gofmt -l <files>            |
//	| --python  | ruff     | ruff format --check <files> |
//	| --js      | prettier | prettier --list-different   |
//	| --gn      | gn       | gn format --dry-run <file>  |
//
// The flag is what a developer passes to the project's format command to
// fix the reported files, so CheckFormat groups results by it.
//
// # Severity Mapping
//
//	| Linter Severity | Our Severity | Presubmit effect |
//	|-----------------|--------------|------------------|
//	| error           | Error        | reported         |
//	| warning         | Warning      | reported         |
//	| info/style      | Info         | dropped          |
//
// A RulePolicy per language can promote, demote, or ignore rules.
//
// # Missing Tools
//
// A linter or formatter missing from PATH is never an error. Lint results
// carry LinterAvailable=false and CheckFormat lists the tool as skipped.
//
// # Thread Safety
//
// All exported types are safe for concurrent use.
package lint
