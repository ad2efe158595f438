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
	"strings"
	"sync"
)

// =============================================================================
// RULE POLICY
// =============================================================================

// RulePolicy adjusts the severity of linter rules.
//
// Description:
//
//	Rules match exactly, by hierarchy ("errcheck" matches "errcheck/assert"),
//	or by code prefix followed by a digit ("SA" matches "SA1000").
//	Matching is case-insensitive. Ignore wins over Error, Error over Warn.
//	Rules matching no list keep the severity the linter reported.
//
// Thread Safety: Treat as immutable after creation.
type RulePolicy struct {
	// Error lists rules promoted to SeverityError.
	Error []string `yaml:"error"`

	// Warn lists rules set to SeverityWarning.
	Warn []string `yaml:"warn"`

	// Ignore lists rules dropped entirely.
	Ignore []string `yaml:"ignore"`
}

// Severity returns the policy severity for rule and whether the rule is
// ignored. reported is the linter's own severity.
func (p *RulePolicy) Severity(rule string, reported Severity) (Severity, bool) {
	rule = strings.ToLower(rule)
	switch {
	case matchesAny(rule, p.Ignore):
		return SeverityInfo, true
	case matchesAny(rule, p.Error):
		return SeverityError, false
	case matchesAny(rule, p.Warn):
		return SeverityWarning, false
	default:
		return reported, false
	}
}

func matchesAny(rule string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesRule(rule, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// matchesRule checks if a lower-cased rule matches a lower-cased pattern.
func matchesRule(rule, pattern string) bool {
	if pattern == "" {
		return false
	}
	if rule == pattern || strings.HasPrefix(rule, pattern+"/") {
		return true
	}
	if strings.HasPrefix(rule, pattern) && len(rule) > len(pattern) {
		next := rule[len(pattern)]
		return next >= '0' && next <= '9'
	}
	return false
}

// =============================================================================
// DEFAULT POLICIES
// =============================================================================

// DefaultGoPolicy ignores the rules formatting checks already cover.
var DefaultGoPolicy = RulePolicy{
	Error:  []string{"typecheck", "errcheck", "govet", "staticcheck", "SA"},
	Warn:   []string{"ineffassign", "unused", "unparam"},
	Ignore: []string{"gofmt", "goimports", "gofumpt", "lll", "wsl", "funlen", "gocyclo", "gocognit"},
}

// DefaultPythonPolicy follows the repository pylint conventions.
var DefaultPythonPolicy = RulePolicy{
	Error:  []string{"F", "E9"},
	Warn:   []string{"E", "W", "C90"},
	Ignore: []string{"E501", "W291", "W293", "D", "I"},
}

// DefaultJSPolicy leaves layout rules to prettier.
var DefaultJSPolicy = RulePolicy{
	Error:  []string{"no-undef", "no-eval", "no-implied-eval"},
	Warn:   []string{"no-unused-vars", "@typescript-eslint/no-unused-vars", "eqeqeq", "prefer-const"},
	Ignore: []string{"indent", "semi", "quotes", "comma-dangle", "max-len"},
}

// =============================================================================
// POLICY REGISTRY
// =============================================================================

// PolicyRegistry holds one RulePolicy per language.
//
// Thread Safety: Safe for concurrent use.
type PolicyRegistry struct {
	mu       sync.RWMutex
	policies map[string]*RulePolicy
}

// NewPolicyRegistry creates a registry with the default policies.
func NewPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{
		policies: map[string]*RulePolicy{
			"go":         &DefaultGoPolicy,
			"python":     &DefaultPythonPolicy,
			"typescript": &DefaultJSPolicy,
			"javascript": &DefaultJSPolicy,
		},
	}
}

// Get returns the policy for a language, or nil.
func (r *PolicyRegistry) Get(language string) *RulePolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policies[language]
}

// Register adds or replaces a language's policy.
func (r *PolicyRegistry) Register(language string, policy *RulePolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[language] = policy
}

// ApplyPolicy sorts issues into errors, warnings, and infos.
//
// Description:
//
//	Ignored rules are dropped. A nil policy keeps every issue at the
//	severity the linter reported.
//
// Inputs:
//
//	issues - Raw issues from a parser.
//	policy - The language policy. May be nil.
//
// Outputs:
//
//	errors, warnings, infos - Non-nil slices in input order.
func ApplyPolicy(issues []LintIssue, policy *RulePolicy) (errors, warnings, infos []LintIssue) {
	errors = make([]LintIssue, 0)
	warnings = make([]LintIssue, 0)
	infos = make([]LintIssue, 0)

	for _, issue := range issues {
		if policy != nil {
			severity, ignored := policy.Severity(issue.Rule, issue.Severity)
			if ignored {
				continue
			}
			issue.Severity = severity
		}

		switch issue.Severity {
		case SeverityError:
			errors = append(errors, issue)
		case SeverityWarning:
			warnings = append(warnings, issue)
		default:
			infos = append(infos, issue)
		}
	}
	return errors, warnings, infos
}
