package model

type FileStatus string

const (
	FileStatusPending   FileStatus = "pending"
	FileStatusUploading FileStatus = "uploading"
	FileStatusUploaded  FileStatus = "uploaded"
)

// FileAttachment is metadata for one attached file. The URL is whatever the
// caller handed us (object URL, file:// path, remote link); it is never fetched.
type FileAttachment struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Size      int64      `json:"size"`
	Type      string     `json:"type"`
	URL       string     `json:"url"`
	Status    FileStatus `json:"status"`
	Progress  *int       `json:"progress,omitempty"`
	CreatedAt int64      `json:"createdAt"` // unix ms
}

type Files struct {
	Title           string           `json:"title"`
	Description     *string          `json:"description,omitempty"`
	ShowDescription bool             `json:"showDescription"`
	Files           []FileAttachment `json:"files"`
}

func (f *Files) FindFile(id string) (int, bool) {
	for i := range f.Files {
		if f.Files[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
