package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

const (
	workingRootCreateErrorTemplateConstant       = "unable to create working directory %s: %w"
	existingDirectoryRemoveErrorTemplateConstant = "unable to remove existing directory %s: %w"
	directoryRemoveErrorTemplateConstant         = "unable to remove %s: %w"
	permissionResetErrorTemplateConstant         = "unable to reset permissions on %s: %w"
	workingRootPermissionsConstant               = 0o755
	writableDirectoryPermissionsConstant         = 0o700
	writableFilePermissionsConstant              = 0o600
)

// Workspace manages the per-repository working directories.
type Workspace interface {
	// Prepare makes the parent directory available and removes a previous clone at repositoryPath.
	// It reports whether a previous directory was removed.
	Prepare(repositoryPath string) (bool, error)
	// Remove deletes repositoryPath and everything beneath it.
	Remove(repositoryPath string) error
}

// FileSystemWorkspace implements Workspace on the local filesystem.
type FileSystemWorkspace struct{}

// NewFileSystemWorkspace constructs a FileSystemWorkspace.
func NewFileSystemWorkspace() FileSystemWorkspace {
	return FileSystemWorkspace{}
}

// Prepare creates the working root and removes any previous directory at repositoryPath.
func (workspace FileSystemWorkspace) Prepare(repositoryPath string) (bool, error) {
	workingRoot := filepath.Dir(repositoryPath)
	if createError := os.MkdirAll(workingRoot, workingRootPermissionsConstant); createError != nil {
		return false, fmt.Errorf(workingRootCreateErrorTemplateConstant, workingRoot, createError)
	}

	if _, statError := os.Lstat(repositoryPath); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(existingDirectoryRemoveErrorTemplateConstant, repositoryPath, statError)
	}

	if removeError := workspace.Remove(repositoryPath); removeError != nil {
		return false, fmt.Errorf(existingDirectoryRemoveErrorTemplateConstant, repositoryPath, removeError)
	}
	return true, nil
}

// Remove deletes repositoryPath. Read-only entries, such as git pack files on some
// platforms, are made writable and the removal is retried once.
func (workspace FileSystemWorkspace) Remove(repositoryPath string) error {
	firstError := os.RemoveAll(repositoryPath)
	if firstError == nil {
		return nil
	}

	var removalErrors *multierror.Error
	removalErrors = multierror.Append(removalErrors, fmt.Errorf(directoryRemoveErrorTemplateConstant, repositoryPath, firstError))
	if permissionError := makeWritable(repositoryPath); permissionError != nil {
		removalErrors = multierror.Append(removalErrors, permissionError)
	}

	if retryError := os.RemoveAll(repositoryPath); retryError != nil {
		removalErrors = multierror.Append(removalErrors, fmt.Errorf(directoryRemoveErrorTemplateConstant, repositoryPath, retryError))
		return removalErrors.ErrorOrNil()
	}
	return nil
}

func makeWritable(rootPath string) error {
	var permissionErrors *multierror.Error
	walkError := filepath.WalkDir(rootPath, func(entryPath string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			permissionErrors = multierror.Append(permissionErrors, entryError)
			return nil
		}
		permissions := os.FileMode(writableFilePermissionsConstant)
		if entry.IsDir() {
			permissions = writableDirectoryPermissionsConstant
		}
		if chmodError := os.Chmod(entryPath, permissions); chmodError != nil {
			permissionErrors = multierror.Append(permissionErrors, fmt.Errorf(permissionResetErrorTemplateConstant, entryPath, chmodError))
		}
		return nil
	})
	if walkError != nil {
		permissionErrors = multierror.Append(permissionErrors, walkError)
	}
	return permissionErrors.ErrorOrNil()
}
