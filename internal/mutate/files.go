package mutate

import (
	"strings"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
)

func editFiles(s *document.Store, ref string, fn func(c *model.Files) error) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	if b.Kind != model.KindFilesAndAttachments {
		return Result{}, WrongKindError{ID: b.ID, Got: b.Kind, Want: string(model.KindFilesAndAttachments)}
	}
	if err := document.Mutate(s, b.ID, fn); err != nil {
		return Result{}, err
	}
	return reload(s, b.ID, true)
}

func AddFile(s *document.Store, ref string, f model.FileAttachment) (Result, error) {
	return editFiles(s, ref, func(c *model.Files) error {
		c.Files = append(c.Files, f)
		return nil
	})
}

func RenameFile(s *document.Store, ref, fileID, name string) (Result, error) {
	name = strings.TrimSpace(name)
	return editFiles(s, ref, func(c *model.Files) error {
		i, ok := c.FindFile(fileID)
		if !ok {
			return NotFoundError{Kind: "file", ID: fileID}
		}
		c.Files[i].Name = name
		return nil
	})
}

// RemoveFile drops the attachment from the block and returns it so the caller
// can clean up whatever the URL points at.
func RemoveFile(s *document.Store, ref, fileID string) (Result, model.FileAttachment, error) {
	var removed model.FileAttachment
	res, err := editFiles(s, ref, func(c *model.Files) error {
		i, ok := c.FindFile(fileID)
		if !ok {
			return NotFoundError{Kind: "file", ID: fileID}
		}
		removed = c.Files[i]
		c.Files = append(c.Files[:i], c.Files[i+1:]...)
		return nil
	})
	return res, removed, err
}

func SetFilesTitle(s *document.Store, ref, title string) (Result, error) {
	return editFiles(s, ref, func(c *model.Files) error {
		c.Title = title
		return nil
	})
}

// SetFilesDescription sets the description; nil clears it. show toggles
// whether it is displayed.
func SetFilesDescription(s *document.Store, ref string, desc *string, show bool) (Result, error) {
	return editFiles(s, ref, func(c *model.Files) error {
		c.Description = desc
		c.ShowDescription = show
		return nil
	})
}
