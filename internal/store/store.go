package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"proposal-cli/internal/config"
)

const workspaceDirName = ".proposal"

// Workspace is the directory holding one document's storage and attachments.
type Workspace struct {
	Dir string
}

// DiscoverDir walks up from start looking for a .proposal directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir is the discovered .proposal directory, or ./.proposal when none exists.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}

func NormalizeWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("workspace name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.New("workspace name must be a plain directory name")
	}
	return name, nil
}

// WorkspaceDir is ~/.proposal/workspaces/<name> (honouring PROPOSAL_CONFIG_DIR).
func WorkspaceDir(name string) (string, error) {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return "", err
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspaces", name), nil
}

func ListWorkspaces() ([]string, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	out := []string{}
	ents, err := os.ReadDir(filepath.Join(dir, "workspaces"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, err
	}
	for _, e := range ents {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (w Workspace) Ensure() error {
	return os.MkdirAll(w.Dir, 0o755)
}

// Exists reports whether the workspace directory has been created.
func (w Workspace) Exists() bool {
	st, err := os.Stat(w.Dir)
	return err == nil && st.IsDir()
}
