package types

import (
	"testing"
	"time"
)

func TestParseInterviewType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect InterviewType
		err    bool
	}{
		{input: "HR", expect: HR},
		{input: " technical ", expect: Technical},
		{input: "System Design", expect: SystemDesign},
		{input: "SystemDesign", expect: SystemDesign},
		{input: "system_design", expect: SystemDesign},
		{input: "behavioural", err: true},
		{input: "", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseInterviewType(tt.input)
			if tt.err {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestIntakeDataValidate(t *testing.T) {
	valid := IntakeData{
		Resume:         "resume.pdf",
		JobDescription: "Go engineer",
		InterviewType:  Technical,
		Timestamp:      time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid intake, got %v", err)
	}

	cases := map[string]func(d *IntakeData){
		"missing resume":    func(d *IntakeData) { d.Resume = "" },
		"missing job":       func(d *IntakeData) { d.JobDescription = "" },
		"unknown type":      func(d *IntakeData) { d.InterviewType = "Pairing" },
		"missing type":      func(d *IntakeData) { d.InterviewType = "" },
		"missing timestamp": func(d *IntakeData) { d.Timestamp = time.Time{} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := valid
			mutate(&d)
			if err := d.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestTranscriptText(t *testing.T) {
	c := CompletedInterview{Transcript: []string{"interviewer: hi", "candidate: hello"}}
	if got := c.TranscriptText(); got != "interviewer: hi\ncandidate: hello" {
		t.Fatalf("unexpected transcript text: %q", got)
	}
}
