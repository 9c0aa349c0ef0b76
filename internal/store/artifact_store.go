// Package store persists generated artifacts under the project's .cynthia
// directory.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/whaaaley/cynthia/common"
	"github.com/whaaaley/cynthia/internal/cynerr"
)

const (
	// ProjectDirName marks a cynthia project root.
	ProjectDirName = ".cynthia"

	// MaxArtifactSize is the maximum allowed size of generated code in bytes.
	MaxArtifactSize = 200 * 1024

	genSuffix    = ".gen.ts"
	promptSuffix = ".prompt.md"
)

var (
	ErrProjectDirNotFound = errors.New(".cynthia directory not found, run cynthia init")
	ErrArtifactTooLarge   = errors.New("artifact exceeds maximum size")
	ErrEmptyArtifact      = errors.New("artifact content cannot be empty")
	ErrInvalidName        = errors.New("invalid artifact name")
	ErrPathTraversal      = errors.New("path traversal not allowed")
)

// FindProjectDir walks from start toward the root looking for .cynthia.
func FindProjectDir(start string) (string, error) {
	dir, err := common.FindUp(start, ProjectDirName, true)
	if errors.Is(err, common.ErrNotFound) {
		return "", cynerr.Precondition(fmt.Errorf("%w (searched from %s)", ErrProjectDirNotFound, start))
	}
	if err != nil {
		return "", cynerr.Precondition(fmt.Errorf("finding %s: %w", ProjectDirName, err))
	}
	return dir, nil
}

// ArtifactRef points at one generated code/prompt pair.
type ArtifactRef struct {
	RunID      int64
	Base       string
	CodePath   string
	PromptPath string
	SHA256     string
	WrittenAt  time.Time
}

type ArtifactStore struct {
	rootDir string
	clock   func() time.Time
}

// NewArtifactStore creates a store rooted at an existing project directory.
func NewArtifactStore(rootDir string) (*ArtifactStore, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("artifact root directory is required")
	}
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("artifact root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("artifact root %s is not a directory", rootDir)
	}
	return &ArtifactStore{rootDir: rootDir, clock: time.Now}, nil
}

// WithClock replaces the clock used to stamp artifact names.
func (s *ArtifactStore) WithClock(clock func() time.Time) *ArtifactStore {
	s.clock = clock
	return s
}

func (s *ArtifactStore) Dir() string {
	return s.rootDir
}

// Write stores code as <ms>-<base>.gen.ts and the prompt beside it as
// <ms>-<base>.prompt.md. Both files are written to a temp name and renamed.
// When a stamp is taken the next free millisecond is used.
func (s *ArtifactStore) Write(ctx context.Context, runID int64, base, code, prompt string) (ArtifactRef, error) {
	if len(code) == 0 {
		return ArtifactRef{}, ErrEmptyArtifact
	}
	if len(code) > MaxArtifactSize {
		return ArtifactRef{}, ErrArtifactTooLarge
	}
	if err := validateName(base); err != nil {
		return ArtifactRef{}, err
	}

	now := s.clock()
	ms := now.UnixMilli()
	var stem string
	for {
		stem = strconv.FormatInt(ms, 10) + "-" + base
		if _, err := os.Stat(filepath.Join(s.rootDir, stem+genSuffix)); errors.Is(err, os.ErrNotExist) {
			break
		}
		ms++
	}

	ref := ArtifactRef{
		RunID:      runID,
		Base:       stem,
		CodePath:   filepath.Join(s.rootDir, stem+genSuffix),
		PromptPath: filepath.Join(s.rootDir, stem+promptSuffix),
		SHA256:     sha256Hash([]byte(code)),
		WrittenAt:  now.UTC(),
	}

	if err := writeAtomic(ref.CodePath, []byte(code)); err != nil {
		return ArtifactRef{}, fmt.Errorf("writing generated code: %w", err)
	}
	if err := writeAtomic(ref.PromptPath, []byte(prompt)); err != nil {
		return ArtifactRef{}, fmt.Errorf("writing prompt: %w", err)
	}

	slog.DebugContext(ctx, "artifacts written",
		"code_path", ref.CodePath,
		"prompt_path", ref.PromptPath,
		"sha256", ref.SHA256)
	return ref, nil
}

// ShimPath is the module the test file imports: phone.cyn.ts imports
// ./phone.ts.
func ShimPath(testPath string) string {
	return filepath.Join(filepath.Dir(testPath), common.BaseName(testPath)+".ts")
}

// WriteShim points the module imported by testPath at genPath by
// re-exporting its default export. It returns the shim path.
func WriteShim(testPath, genPath string) (string, error) {
	shim := ShimPath(testPath)
	rel, err := filepath.Rel(filepath.Dir(shim), genPath)
	if err != nil {
		return "", fmt.Errorf("relative path to %s: %w", genPath, err)
	}
	content := "export { default } from './" + filepath.ToSlash(rel) + "'"
	if err := writeAtomic(shim, []byte(content)); err != nil {
		return "", fmt.Errorf("writing shim: %w", err)
	}
	return shim, nil
}

func validateName(base string) error {
	if base == "" {
		return ErrInvalidName
	}
	if strings.Contains(base, "..") || strings.ContainsAny(base, `/\`) || filepath.IsAbs(base) {
		return ErrPathTraversal
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func sha256Hash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
