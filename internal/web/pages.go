package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"upload.html", "preparing.html", "interview.html", "feedback.html"}

type pages struct {
	byName map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"score": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

func loadPages() (*pages, error) {
	p := &pages{byName: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		p.byName[name] = tmpl
	}
	return p, nil
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages.byName[name]
	if !ok {
		s.logger.Error("unknown page", zap.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type interviewTypeOption struct {
	Value       types.InterviewType
	Label       string
	Description string
	Selected    bool
}

var interviewTypeDescriptions = map[types.InterviewType]string{
	types.HR:           "Behavioral questions and company culture fit",
	types.Technical:    "Coding problems and technical knowledge",
	types.SystemDesign: "Architecture and scalability discussions",
}

func interviewTypeOptions(selected string) []interviewTypeOption {
	current, _ := types.ParseInterviewType(selected)
	options := make([]interviewTypeOption, 0, len(types.InterviewTypes))
	for _, t := range types.InterviewTypes {
		options = append(options, interviewTypeOption{
			Value:       t,
			Label:       t.Label(),
			Description: interviewTypeDescriptions[t],
			Selected:    t == current,
		})
	}
	return options
}

type uploadPage struct {
	Title          string
	Notice         string
	Error          string
	JobDescription string
	InterviewTypes []interviewTypeOption
}

type interviewPage struct {
	Title           string
	InterviewType   types.InterviewType
	ConversationURL string
	Microphone      bool
	Camera          bool
}

type feedbackPage struct {
	Title     string
	Interview *types.CompletedInterview
	Feedback  *types.Feedback
}
