package mailer

import (
	"strings"
	"testing"
)

// Render every embedded template to catch missing blocks or bad field
// references before they blow up inside a consumer worker.
func TestRenderTemplates(t *testing.T) {
	tests := []struct {
		name         string
		templateFile MailTemplateFile
		data         any
		wantInBody   string
	}{
		{
			name:         "signer turn",
			templateFile: TemplateSignerTurn,
			data: SignerTurnData{
				SignerName:   "Bona",
				DocumentName: "lease.pdf",
				Initiator:    "Dara",
				SignURL:      "https://coseal.example.com/requests/abc/sign",
				AppName:      "CoSeal",
				AppLogoURL:   "https://coseal.example.com/logo.png",
			},
			wantInBody: "lease.pdf",
		},
		{
			name:         "request completed",
			templateFile: TemplateRequestCompleted,
			data: RequestCompletedData{
				RecipientName: "Dara",
				DocumentName:  "lease.pdf",
				VerifyURL:     "https://coseal.example.com/verify/abc",
				AppName:       "CoSeal",
				AppLogoURL:    "https://coseal.example.com/logo.png",
			},
			wantInBody: "verify",
		},
		{
			name:         "request rejected",
			templateFile: TemplateRequestRejected,
			data: RequestRejectedData{
				RecipientName: "Dara",
				DocumentName:  "lease.pdf",
				RejectedBy:    "Bona",
				Reason:        "Wrong lease terms",
				AppName:       "CoSeal",
				AppLogoURL:    "https://coseal.example.com/logo.png",
			},
			wantInBody: "Wrong lease terms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body, err := renderTemplate(tt.templateFile, tt.data)
			if err != nil {
				t.Fatalf("renderTemplate() error: %v", err)
			}

			if strings.TrimSpace(subject) == "" {
				t.Error("Expected a non-empty subject")
			}

			if !strings.Contains(body, tt.wantInBody) {
				t.Errorf("Expected body to contain %q", tt.wantInBody)
			}
		})
	}
}
