package intake

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/interview-coach/internal/types"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func TestAcceptResume(t *testing.T) {
	tests := []struct {
		name   string
		file   File
		reject bool
	}{
		{name: "declared pdf", file: File{Name: "cv.pdf", ContentType: "application/pdf", Data: pdfBytes}},
		{name: "sniffed pdf", file: File{Name: "cv", ContentType: "application/octet-stream", Data: pdfBytes}},
		{name: "missing type", file: File{Name: "cv", Data: pdfBytes}},
		{name: "word document", file: File{Name: "cv.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, reject: true},
		{name: "plain text", file: File{Name: "cv.txt", ContentType: "text/plain", Data: []byte("hello")}, reject: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var form Form
			err := form.AcceptResume(tt.file)
			if !tt.reject {
				require.NoError(t, err)
				require.NotNil(t, form.Resume)
				assert.Equal(t, "application/pdf", form.Resume.ContentType)
				return
			}

			var rejected *RejectedFileError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, "Please upload a PDF file for your resume.", rejected.Message)
			assert.Nil(t, form.Resume)
		})
	}
}

func TestAcceptJobDescription(t *testing.T) {
	t.Run("text file fills description", func(t *testing.T) {
		var form Form
		require.NoError(t, form.AcceptJobDescription(File{Name: "jd.txt", ContentType: "text/plain; charset=utf-8", Data: []byte("  Go backend engineer\n")}))
		assert.Equal(t, "Go backend engineer", form.JobDescription)
		require.NotNil(t, form.JobDescriptionFile)
	})

	t.Run("sniffed text file", func(t *testing.T) {
		var form Form
		require.NoError(t, form.AcceptJobDescription(File{Name: "jd", Data: []byte("Platform engineer")}))
		assert.Equal(t, "Platform engineer", form.JobDescription)
	})

	t.Run("pdf keeps typed description", func(t *testing.T) {
		form := Form{JobDescription: "typed"}
		require.NoError(t, form.AcceptJobDescription(File{Name: "jd.pdf", ContentType: "application/pdf", Data: pdfBytes}))
		assert.Equal(t, "typed", form.JobDescription)
	})

	t.Run("image rejected", func(t *testing.T) {
		var form Form
		err := form.AcceptJobDescription(File{Name: "jd.png", ContentType: "image/png"})
		var rejected *RejectedFileError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "Please upload a PDF or text file for the job description.", rejected.Message)
		assert.Equal(t, "image/png", rejected.ContentType)
		assert.Nil(t, form.JobDescriptionFile)
	})
}

func TestReady(t *testing.T) {
	resume := &File{Name: "cv.pdf"}
	jdFile := &File{Name: "jd.pdf"}

	tests := map[string]struct {
		form  Form
		ready bool
	}{
		"all with text":    {form: Form{Resume: resume, JobDescription: "jd", InterviewType: "HR"}, ready: true},
		"all with file":    {form: Form{Resume: resume, JobDescriptionFile: jdFile, InterviewType: "Technical"}, ready: true},
		"missing resume":   {form: Form{JobDescription: "jd", InterviewType: "HR"}},
		"missing jd":       {form: Form{Resume: resume, InterviewType: "HR"}},
		"blank jd":         {form: Form{Resume: resume, JobDescription: "   ", InterviewType: "HR"}},
		"missing type":     {form: Form{Resume: resume, JobDescription: "jd"}},
		"nothing provided": {},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.ready, tt.form.Ready())
		})
	}
}

func TestSubmit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("uses typed description", func(t *testing.T) {
		form := Form{Resume: &File{Name: "cv.pdf"}, JobDescription: " SRE ", InterviewType: "system design"}
		data, err := form.Submit(now)
		require.NoError(t, err)
		assert.Equal(t, types.IntakeData{Resume: "cv.pdf", JobDescription: "SRE", InterviewType: types.SystemDesign, Timestamp: now}, data)
	})

	t.Run("falls back to file name", func(t *testing.T) {
		form := Form{Resume: &File{Name: "cv.pdf"}, JobDescriptionFile: &File{Name: "jd.pdf"}, InterviewType: "HR"}
		data, err := form.Submit(now)
		require.NoError(t, err)
		assert.Equal(t, "jd.pdf", data.JobDescription)
	})

	t.Run("incomplete", func(t *testing.T) {
		form := Form{Resume: &File{Name: "cv.pdf"}, InterviewType: "HR"}
		_, err := form.Submit(now)
		assert.ErrorIs(t, err, ErrIncomplete)
	})

	t.Run("unknown type", func(t *testing.T) {
		form := Form{Resume: &File{Name: "cv.pdf"}, JobDescription: "jd", InterviewType: "Behavioural"}
		_, err := form.Submit(now)
		assert.Error(t, err)
	})
}

type part struct {
	field, name, contentType string
	data                     []byte
}

func multipartRequest(t *testing.T, values map[string]string, files ...part) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestFromRequest(t *testing.T) {
	req := multipartRequest(t,
		map[string]string{"interviewType": "Technical"},
		part{field: "resume", name: "cv.pdf", contentType: "application/pdf", data: pdfBytes},
		part{field: "jobDescriptionFile", name: "jd.txt", contentType: "text/plain", data: []byte("Kubernetes operator work")},
	)

	form, err := FromRequest(req, 0)
	require.NoError(t, err)
	require.True(t, form.Ready())

	data, err := form.Submit(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", data.Resume)
	assert.Equal(t, "Kubernetes operator work", data.JobDescription)
	assert.Equal(t, types.Technical, data.InterviewType)
}

func TestFromRequestKeepsFieldsOnRejection(t *testing.T) {
	req := multipartRequest(t,
		map[string]string{"interviewType": "HR", "jobDescription": "Support lead"},
		part{field: "resume", name: "cv.png", contentType: "image/png", data: []byte{0x89, 'P', 'N', 'G'}},
	)

	form, err := FromRequest(req, 0)
	var rejected *RejectedFileError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "resume", rejected.Field)
	assert.Equal(t, "Support lead", form.JobDescription)
	assert.Equal(t, "HR", form.InterviewType)
}

func TestFromRequestWithoutFiles(t *testing.T) {
	req := multipartRequest(t, map[string]string{"interviewType": "HR", "jobDescription": "x"})

	form, err := FromRequest(req, 0)
	require.NoError(t, err)
	assert.False(t, form.Ready())
}
