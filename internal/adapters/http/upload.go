package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MaxUploadBytes   = 10 << 20
	multipartMemory  = 1 << 20
	multipartOverrun = 1 << 20
	sniffBytes       = 3072
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

type imageUpload struct {
	ownerID  string
	filename string
	body     io.Reader
	file     multipart.File
}

func (u *imageUpload) Close() error {
	if u.file == nil {
		return nil
	}
	return u.file.Close()
}

// readImageUpload parses the multipart form and checks the file is a
// supported image within the size limit. The returned body replays the
// sniffed prefix.
func readImageUpload(w http.ResponseWriter, r *http.Request) (*imageUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+multipartOverrun)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", MaxUploadBytes)}
		}
		return nil, &uploadError{http.StatusBadRequest, "multipart form is required"}
	}

	ownerID := strings.TrimSpace(r.FormValue("owner_id"))
	if ownerID == "" {
		return nil, &uploadError{http.StatusBadRequest, "owner_id is required"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &uploadError{http.StatusBadRequest, "multipart field 'file' is required"}
	}
	if header.Size > MaxUploadBytes {
		_ = file.Close()
		return nil, &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", MaxUploadBytes)}
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return nil, &uploadError{http.StatusBadRequest, "could not read uploaded file"}
	}
	head = head[:n]
	if n == 0 {
		_ = file.Close()
		return nil, &uploadError{http.StatusBadRequest, "uploaded file is empty"}
	}

	detected := mimetype.Detect(head)
	if !isAllowedImage(detected) {
		_ = file.Close()
		return nil, &uploadError{http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported image type %s, expected one of %s", detected.String(), strings.Join(allowedImageTypes, ", "))}
	}

	return &imageUpload{
		ownerID:  ownerID,
		filename: header.Filename,
		body:     io.MultiReader(bytes.NewReader(head), file),
		file:     file,
	}, nil
}

func isAllowedImage(m *mimetype.MIME) bool {
	for _, t := range allowedImageTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}
