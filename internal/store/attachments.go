package store

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"proposal-cli/internal/ids"
	"proposal-cli/internal/model"
)

const DefaultAttachmentMaxBytes int64 = 50 * 1024 * 1024 // 50MB

func (w Workspace) attachmentsDir() string {
	return filepath.Join(w.Dir, "attachments")
}

// ImportAttachment copies srcPath into the workspace and returns metadata for
// a files-and-attachments block. The URL points at the workspace copy.
func (w Workspace) ImportAttachment(srcPath string, maxBytes int64) (model.FileAttachment, error) {
	srcPath = filepath.Clean(strings.TrimSpace(srcPath))
	if srcPath == "" || srcPath == "." {
		return model.FileAttachment{}, errors.New("missing source path")
	}
	st, err := os.Stat(srcPath)
	if err != nil {
		return model.FileAttachment{}, err
	}
	if st.IsDir() {
		return model.FileAttachment{}, errors.New("attachments: source path is a directory")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultAttachmentMaxBytes
	}
	if st.Size() > maxBytes {
		return model.FileAttachment{}, fmt.Errorf("attachments: file too large (%d bytes > %d bytes)", st.Size(), maxBytes)
	}

	name := filepath.Base(srcPath)
	id := ids.New("file")
	destDir := filepath.Join(w.attachmentsDir(), id)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return model.FileAttachment{}, err
	}
	destPath := filepath.Join(destDir, name)

	n, err := copyLimited(srcPath, destPath, maxBytes)
	if err != nil {
		_ = os.RemoveAll(destDir)
		return model.FileAttachment{}, err
	}

	mtype, err := mimetype.DetectFile(destPath)
	kind := "application/octet-stream"
	if err == nil {
		kind = mtype.String()
	}
	abs, err := filepath.Abs(destPath)
	if err != nil {
		abs = destPath
	}
	return model.FileAttachment{
		ID:        id,
		Name:      name,
		Size:      n,
		Type:      kind,
		URL:       (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		Status:    model.FileStatusUploaded,
		CreatedAt: time.Now().UnixMilli(),
	}, nil
}

// RemoveAttachment deletes the workspace copy of f. Attachments that point
// outside the workspace are left alone.
func (w Workspace) RemoveAttachment(f model.FileAttachment) error {
	u, err := url.Parse(f.URL)
	if err != nil || u.Scheme != "file" {
		return nil
	}
	root, err := filepath.Abs(w.attachmentsDir())
	if err != nil {
		return err
	}
	dir := filepath.Dir(filepath.FromSlash(u.Path))
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	return os.RemoveAll(dir)
}

func copyLimited(src, dest string, maxBytes int64) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() { _ = out.Close() }()

	n, err := io.Copy(out, io.LimitReader(in, maxBytes+1))
	if err != nil {
		return n, err
	}
	if n > maxBytes {
		return n, fmt.Errorf("attachments: file too large (%d bytes > %d bytes)", n, maxBytes)
	}
	return n, out.Close()
}
