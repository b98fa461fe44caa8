package mailer

import "embed"

const (
	FROM_NAME = "CoSeal"
	MAX_RETRY = 3
)

type MailTemplateFile string

const (
	TemplateSignerTurn       MailTemplateFile = "templates/signer_turn.tmpl"
	TemplateRequestCompleted MailTemplateFile = "templates/request_completed.tmpl"
	TemplateRequestRejected  MailTemplateFile = "templates/request_rejected.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile MailTemplateFile, toEmail string, data any) (int, error)
}

// SignerTurnData notifies a signer that the request is waiting on them.
type SignerTurnData struct {
	SignerName   string
	DocumentName string
	Initiator    string
	SignURL      string
	AppName      string
	AppLogoURL   string
}

type RequestCompletedData struct {
	RecipientName string
	DocumentName  string
	VerifyURL     string
	AppName       string
	AppLogoURL    string
}

type RequestRejectedData struct {
	RecipientName string
	DocumentName  string
	RejectedBy    string
	Reason        string
	AppName       string
	AppLogoURL    string
}
