// Package intake validates the documents and interview type a candidate
// submits before an interview.
package intake

import (
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spigell/interview-coach/internal/types"
)

const (
	mimePDF       = "application/pdf"
	mimeText      = "text/plain"
	mimeUnknown   = "application/octet-stream"
	resumeField   = "resume"
	jobFileField  = "jobDescriptionFile"
	jobTextField  = "jobDescription"
	typeField     = "interviewType"
	incompleteMsg = "Please fill in all required fields."
)

// ErrIncomplete is returned by Submit when a required field is missing.
var ErrIncomplete = errors.New(incompleteMsg)

// File is one uploaded document.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// RejectedFileError explains why an upload was refused. Message is shown to the user as is.
type RejectedFileError struct {
	Field       string
	Name        string
	ContentType string
	Message     string
}

func (e *RejectedFileError) Error() string {
	return fmt.Sprintf("%s %q rejected (%s): %s", e.Field, e.Name, e.ContentType, e.Message)
}

// Form is the state of the upload page.
type Form struct {
	Resume             *File
	JobDescription     string
	JobDescriptionFile *File
	InterviewType      string
}

// AcceptResume stores file as the résumé. Only PDF documents are accepted.
func (f *Form) AcceptResume(file File) error {
	ct := contentType(file)
	if ct != mimePDF {
		return &RejectedFileError{
			Field:       resumeField,
			Name:        file.Name,
			ContentType: ct,
			Message:     "Please upload a PDF file for your resume.",
		}
	}

	file.ContentType = ct
	f.Resume = &file
	return nil
}

// AcceptJobDescription stores file as the job description. PDF and plain text
// are accepted; the content of a text file becomes the job description text.
func (f *Form) AcceptJobDescription(file File) error {
	ct := contentType(file)
	switch ct {
	case mimePDF:
	case mimeText:
		f.JobDescription = strings.TrimSpace(string(file.Data))
	default:
		return &RejectedFileError{
			Field:       jobFileField,
			Name:        file.Name,
			ContentType: ct,
			Message:     "Please upload a PDF or text file for the job description.",
		}
	}

	file.ContentType = ct
	f.JobDescriptionFile = &file
	return nil
}

// Ready reports whether the start button may be enabled.
func (f *Form) Ready() bool {
	if f.Resume == nil || strings.TrimSpace(f.InterviewType) == "" {
		return false
	}
	return strings.TrimSpace(f.JobDescription) != "" || f.JobDescriptionFile != nil
}

// Submit turns a ready form into intake data stamped with now.
func (f *Form) Submit(now time.Time) (types.IntakeData, error) {
	if !f.Ready() {
		return types.IntakeData{}, ErrIncomplete
	}

	interviewType, err := types.ParseInterviewType(f.InterviewType)
	if err != nil {
		return types.IntakeData{}, err
	}

	jobDescription := strings.TrimSpace(f.JobDescription)
	if jobDescription == "" {
		jobDescription = f.JobDescriptionFile.Name
	}

	data := types.IntakeData{
		Resume:         f.Resume.Name,
		JobDescription: jobDescription,
		InterviewType:  interviewType,
		Timestamp:      now,
	}
	if err := data.Validate(); err != nil {
		return types.IntakeData{}, fmt.Errorf("%s: %w", incompleteMsg, err)
	}

	return data, nil
}

// contentType is the declared media type of file without parameters. When the
// browser sent none the type is sniffed from the content.
func contentType(file File) string {
	declared := strings.TrimSpace(file.ContentType)
	if declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			declared = parsed
		}
	}
	if declared != "" && declared != mimeUnknown {
		return strings.ToLower(declared)
	}

	detected := mimetype.Detect(file.Data)
	switch {
	case detected.Is(mimePDF):
		return mimePDF
	case detected.Is(mimeText):
		return mimeText
	}
	parsed, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return mimeUnknown
	}
	return parsed
}
