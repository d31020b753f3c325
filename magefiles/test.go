//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, property, bench, cover).
type Test mg.Namespace

// All runs every test with the race detector.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-race", "-v", "./...")
}

// Unit runs the tests of every package that has any, skipping property runs.
func (Test) Unit() error {
	pkgs, err := testPackages()
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		fmt.Println("No test packages found.")
		return nil
	}
	args := append([]string{"test", "-skip", "Property"}, pkgs...)
	return sh.RunV(binGo, args...)
}

// Property runs only the property-based tests.
func (Test) Property() error {
	return sh.RunV(binGo, "test", "-run", "Property", "-v", "./pkg/...")
}

// Bench runs the store benchmarks.
func (Test) Bench() error {
	return sh.RunV(binGo, "test", "-run", "^$", "-bench", ".", "-benchmem", "./internal/sqlstore/...")
}

// Cover writes a coverage profile to bin/coverage.out and prints the summary.
func (Test) Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

// testPackages lists packages that contain test files.
func testPackages() ([]string, error) {
	out, err := sh.Output(binGo, "list", "-f", "{{if or .TestGoFiles .XTestGoFiles}}{{.ImportPath}}{{end}}", "./...")
	if err != nil {
		return nil, err
	}
	var pkgs []string
	for pkg := range strings.SplitSeq(out, "\n") {
		if pkg != "" {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}
