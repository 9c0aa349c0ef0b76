// Package scaffold creates project and test file boilerplate.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/whaaaley/cynthia/core/config"
	"github.com/whaaaley/cynthia/internal/pattern"
	"github.com/whaaaley/cynthia/internal/store"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const TestFileSuffix = ".cyn.ts"

var (
	ErrInvalidName = errors.New("invalid test file name")
	ErrExists      = errors.New("file already exists")
)

var testFileTemplate = template.Must(template.New("test").Parse(`// @ts-nocheck: imports generated code that may not exist yet
/* eslint-disable */

import { createTestSuites, runTestSuites } from 'cynthia'
import testFn from './{{.Name}}.ts'

const t = createTestSuites()

t.describe('{{.Title}}', () => {
  t.it('should do something', () => {
    t.expect([]).toBe(true)
  })
})

runTestSuites(t.getState(), testFn)

export default t.getState()
`))

var stubTemplate = template.Must(template.New("stub").Parse(`// Replaced by cynthia gen {{.Name}}{{.Suffix}}
export default function {{.Func}}(): unknown {
  throw new Error('not generated yet')
}
`))

const configTemplate = `# Cynthia configuration

openai:
  model: gpt-4o-mini
  temperature: 0
  # maxTokens: 4000
  # seed: 42

generation:
  maxRetries: 3
  specFormat: auto
  # provider: anthropic

testing:
  runTestsAfterGeneration: true
  deno: deno

cli:
  confirmGenerations: false

analysis:
  systemUnderTest: testFn
`

// Result lists what was created and what already existed.
type Result struct {
	Created []string
	Skipped []string
}

// Init creates .cynthia and a config file in dir. Existing entries are left
// alone.
func Init(dir string) (Result, error) {
	var res Result

	projectDir := filepath.Join(dir, store.ProjectDirName)
	if info, err := os.Stat(projectDir); err == nil && info.IsDir() {
		res.Skipped = append(res.Skipped, projectDir)
	} else {
		if err := os.MkdirAll(projectDir, 0o755); err != nil {
			return res, fmt.Errorf("creating %s: %w", store.ProjectDirName, err)
		}
		res.Created = append(res.Created, projectDir)
	}

	for _, name := range config.FileNames {
		existing := filepath.Join(dir, name)
		if _, err := os.Stat(existing); err == nil {
			res.Skipped = append(res.Skipped, existing)
			return res, nil
		}
	}

	configPath := filepath.Join(dir, config.FileNames[0])
	if err := writeNew(configPath, []byte(configTemplate)); err != nil {
		return res, err
	}
	res.Created = append(res.Created, configPath)
	return res, nil
}

// CreateTestFile writes <name>.cyn.ts and a placeholder <name>.ts for it
// to import. Neither file may exist.
func CreateTestFile(dir, name string) (Result, error) {
	name = strings.TrimSuffix(name, TestFileSuffix)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	data := struct {
		Name   string
		Title  string
		Func   string
		Suffix string
	}{
		Name:   name,
		Title:  pattern.TitleCase(name),
		Func:   funcName(name),
		Suffix: TestFileSuffix,
	}

	testPath := filepath.Join(dir, name+TestFileSuffix)
	stubPath := filepath.Join(dir, name+".ts")
	for _, p := range []string{testPath, stubPath} {
		if _, err := os.Stat(p); err == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrExists, p)
		}
	}

	var res Result
	for _, f := range []struct {
		path string
		tmpl *template.Template
	}{
		{testPath, testFileTemplate},
		{stubPath, stubTemplate},
	} {
		var buf bytes.Buffer
		if err := f.tmpl.Execute(&buf, data); err != nil {
			return res, fmt.Errorf("rendering %s: %w", filepath.Base(f.path), err)
		}
		if err := writeNew(f.path, buf.Bytes()); err != nil {
			return res, err
		}
		res.Created = append(res.Created, f.path)
	}
	return res, nil
}

// funcName turns "phone-number" into "phoneNumber".
func funcName(name string) string {
	words := pattern.SplitWords(name)
	if len(words) == 0 {
		return "generated"
	}
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title.String(w))
	}
	out := b.String()
	if r, _ := utf8.DecodeRuneInString(out); unicode.IsDigit(r) {
		out = "fn" + out
	}
	return out
}

func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
