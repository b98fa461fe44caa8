package signing

import (
	"strings"
	"testing"

	"github.com/cosealhq/coseal/internal/util"
	"github.com/go-playground/validator/v10"
)

func newBindingValidator(t *testing.T) *validator.Validate {
	t.Helper()

	// Same tag name and custom validations the gin binding validator gets
	// at startup.
	v := validator.New()
	v.SetTagName("binding")
	if err := util.RegisterCustomValidations(v); err != nil {
		t.Fatalf("Failed to register custom validations: %v", err)
	}

	return v
}

func TestSignerInputBindingTags(t *testing.T) {
	v := newBindingValidator(t)

	tests := []struct {
		name    string
		input   SignerInput
		wantErr bool
	}{
		{
			name:    "valid",
			input:   SignerInput{SignerID: "signer-1", Email: "one@example.com"},
			wantErr: false,
		},
		{
			name:    "missing signer id",
			input:   SignerInput{Email: "one@example.com"},
			wantErr: true,
		},
		{
			name: "whitespace only signer id",
			// Passes required, must be caught by strNotEmpty.
			input:   SignerInput{SignerID: "   ", Email: "one@example.com"},
			wantErr: true,
		},
		{
			name:    "signer id too long",
			input:   SignerInput{SignerID: strings.Repeat("a", 256), Email: "one@example.com"},
			wantErr: true,
		},
		{
			name:    "invalid email",
			input:   SignerInput{SignerID: "signer-1", Email: "not-an-email"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
