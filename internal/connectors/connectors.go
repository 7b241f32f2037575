// Package connectors fetches raw RFQ emails from mail providers and
// stores them for the quoting pipeline.
package connectors

import (
	"fmt"

	"hvacquote/internal"
	"hvacquote/internal/config"
	"hvacquote/internal/connectors/gmail"
	"hvacquote/internal/connectors/imap"
)

type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.MailMessage, error)
}

// ForProvider builds the connector named by provider ("gmail" or
// "imap").
func ForProvider(cfg config.Config, provider string) (MailConnector, error) {
	switch provider {
	case "gmail":
		return gmail.NewConnector(cfg)
	case "imap":
		return imap.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unknown mail provider: %s", provider)
	}
}
