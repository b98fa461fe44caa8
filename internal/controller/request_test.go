package controller

import (
	"strings"
	"testing"

	"github.com/cosealhq/coseal/internal/signing"
	"github.com/cosealhq/coseal/internal/util"
	"github.com/go-playground/validator/v10"
)

func newBindingValidator(t *testing.T) *validator.Validate {
	t.Helper()

	v := validator.New()
	v.SetTagName("binding")
	if err := util.RegisterCustomValidations(v); err != nil {
		t.Fatalf("Failed to register custom validations: %v", err)
	}

	return v
}

func TestCreateRequestBodyBindingTags(t *testing.T) {
	v := newBindingValidator(t)

	signers := []signing.SignerInput{{SignerID: "signer-1", Email: "one@example.com"}}

	tests := []struct {
		name    string
		body    createRequestBody
		wantErr bool
	}{
		{
			name:    "valid",
			body:    createRequestBody{DocumentID: "doc-1", Signers: signers},
			wantErr: false,
		},
		{
			name:    "whitespace only document id",
			body:    createRequestBody{DocumentID: "   ", Signers: signers},
			wantErr: true,
		},
		{
			name:    "missing signers",
			body:    createRequestBody{DocumentID: "doc-1"},
			wantErr: true,
		},
		{
			name: "dive catches bad signer",
			body: createRequestBody{
				DocumentID: "doc-1",
				Signers:    []signing.SignerInput{{SignerID: "  ", Email: "one@example.com"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.body)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRejectBodyBindingTags(t *testing.T) {
	v := newBindingValidator(t)

	tests := []struct {
		name    string
		body    rejectBody
		wantErr bool
	}{
		{name: "empty reason allowed", body: rejectBody{}, wantErr: false},
		{name: "normal reason", body: rejectBody{Reason: "wrong version attached"}, wantErr: false},
		{name: "reason too short", body: rejectBody{Reason: "x"}, wantErr: true},
		{name: "reason too long", body: rejectBody{Reason: strings.Repeat("a", 501)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.body)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
