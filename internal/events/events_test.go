package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Sakshi281205/sleeppeddlers/internal/events"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

func newValidator(t *testing.T) *events.Validator {
	t.Helper()
	v, err := events.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return v
}

func TestValidate(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		target  string
		payload string
		valid   bool
	}{
		{
			name:    "object created",
			target:  events.TargetObjectCreated,
			payload: `{"bucket":"triage","key":"uploads/abc","content_type":"image/png","size":1024}`,
			valid:   true,
		},
		{
			name:    "object created without key",
			target:  events.TargetObjectCreated,
			payload: `{"bucket":"triage"}`,
		},
		{
			name:    "object created negative size",
			target:  events.TargetObjectCreated,
			payload: `{"bucket":"triage","key":"uploads/abc","size":-1}`,
		},
		{
			name:    "classify",
			target:  events.TargetClassify,
			payload: `{"bucket":"triage","image_key":"uploads/abc","job_id":"abc","job_key":"jobs/abc.json"}`,
			valid:   true,
		},
		{
			name:    "classify bad job key",
			target:  events.TargetClassify,
			payload: `{"bucket":"triage","image_key":"uploads/abc","job_id":"abc","job_key":"abc"}`,
		},
		{
			name:    "summarize without job id",
			target:  events.TargetSummarize,
			payload: `{"bucket":"triage","ai_results_key":"ai-results/abc.json","job_key":"jobs/abc.json"}`,
			valid:   true,
		},
		{
			name:    "summarize missing analysis key",
			target:  events.TargetSummarize,
			payload: `{"bucket":"triage","job_key":"jobs/abc.json"}`,
		},
		{
			name:    "not json",
			target:  events.TargetSummarize,
			payload: `{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.target, []byte(tt.payload))
			if tt.valid {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, events.ErrInvalidPayload) {
				t.Errorf("error = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestValidateUnknownTarget(t *testing.T) {
	v := newValidator(t)
	if err := v.Validate("archive", []byte(`{}`)); !errors.Is(err, trigger.ErrUnknownTarget) {
		t.Errorf("error = %v, want ErrUnknownTarget", err)
	}
}

func TestHandleDecodes(t *testing.T) {
	v := newValidator(t)

	var got events.ClassifyRequest
	h := events.Handle(v, events.TargetClassify, func(_ context.Context, req events.ClassifyRequest) error {
		got = req
		return nil
	})

	want := events.ClassifyRequest{Bucket: "triage", ImageKey: "uploads/abc", JobID: "abc", JobKey: "jobs/abc.json"}
	payload, _ := json.Marshal(want)

	if err := h(context.Background(), payload); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	called := false
	h = events.Handle(v, events.TargetClassify, func(context.Context, events.ClassifyRequest) error {
		called = true
		return nil
	})
	if err := h(context.Background(), []byte(`{"bucket":"triage"}`)); err == nil {
		t.Error("expected validation error")
	}
	if called {
		t.Error("stage should not run on an invalid payload")
	}
}
