package intake

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
)

// DefaultMaxBytes caps an upload request.
const DefaultMaxBytes = 10 << 20

// FromRequest reads the upload form from a multipart request. Text fields are
// filled in even when a file is rejected, so the page can be re-rendered.
func FromRequest(r *http.Request, maxBytes int64) (*Form, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &Form{}, &RejectedFileError{Field: "upload", Message: "Uploaded files are too large."}
		}
		return &Form{}, fmt.Errorf("parse upload form: %w", err)
	}

	form := &Form{
		JobDescription: r.FormValue(jobTextField),
		InterviewType:  r.FormValue(typeField),
	}

	if file, ok, err := readFile(r, resumeField); err != nil {
		return form, err
	} else if ok {
		if err := form.AcceptResume(file); err != nil {
			return form, err
		}
	}

	if file, ok, err := readFile(r, jobFileField); err != nil {
		return form, err
	} else if ok {
		if err := form.AcceptJobDescription(file); err != nil {
			return form, err
		}
	}

	return form, nil
}

func readFile(r *http.Request, field string) (File, bool, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return File{}, false, nil
	}
	if err != nil {
		return File{}, false, fmt.Errorf("read %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return File{}, false, fmt.Errorf("read %s: %w", field, err)
	}

	return File{
		Name:        filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}
