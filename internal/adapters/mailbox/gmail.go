// Package mailbox pulls invoice documents out of a Gmail mailbox.
package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

const (
	// defaultQuery matches unprocessed mail carrying invoice attachments.
	defaultQuery   = "subject:請求書 has:attachment -label:InvoiceProcessed"
	processedLabel = "InvoiceProcessed"
	maxMessages    = 50
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// GmailFetcher lists invoice mail, downloads document attachments and labels
// each message processed so it is never fetched twice.
type GmailFetcher struct {
	svc   *gmail.Service
	query string
}

// NewGmailFetcher builds a fetcher from an authorized OAuth token.
func NewGmailFetcher(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*GmailFetcher, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailFetcher{svc: svc, query: defaultQuery}, nil
}

var _ portssvc.MailFetcher = (*GmailFetcher)(nil)

func (f *GmailFetcher) ensureLabel(ctx context.Context) (string, error) {
	labels, err := f.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}
	for _, l := range labels.Labels {
		if l.Name == processedLabel {
			return l.Id, nil
		}
	}
	created, err := f.svc.Users.Labels.Create("me", &gmail.Label{
		Name:                  processedLabel,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", processedLabel, err)
	}
	return created.Id, nil
}

func decodeAttachment(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}

func headerValue(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

func (f *GmailFetcher) FetchInvoiceMail(ctx context.Context) ([]portssvc.MailDocument, error) {
	labelID, err := f.ensureLabel(ctx)
	if err != nil {
		return nil, err
	}

	list, err := f.svc.Users.Messages.List("me").Q(f.query).MaxResults(maxMessages).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var docs []portssvc.MailDocument
	for _, meta := range list.Messages {
		msg, err := f.svc.Users.Messages.Get("me", meta.Id).Context(ctx).Do()
		if err != nil {
			return docs, fmt.Errorf("failed to get message %s: %w", meta.Id, err)
		}

		var attachments []portssvc.MailAttachment
		if msg.Payload != nil {
			for _, part := range msg.Payload.Parts {
				if part.Filename == "" || !allowedExtensions[strings.ToLower(filepath.Ext(part.Filename))] {
					continue
				}
				if part.Body == nil || part.Body.AttachmentId == "" {
					continue
				}
				att, err := f.svc.Users.Messages.Attachments.Get("me", meta.Id, part.Body.AttachmentId).Context(ctx).Do()
				if err != nil {
					return docs, fmt.Errorf("failed to get attachment of message %s: %w", meta.Id, err)
				}
				data, err := decodeAttachment(att.Data)
				if err != nil {
					continue
				}
				attachments = append(attachments, portssvc.MailAttachment{Filename: part.Filename, Data: data})
			}
		}

		if len(attachments) > 0 {
			docs = append(docs, portssvc.MailDocument{
				MessageID:   meta.Id,
				Subject:     headerValue(msg, "Subject"),
				Sender:      headerValue(msg, "From"),
				Attachments: attachments,
			})
		}

		// Labeled processed even when no attachment survived the filter, so
		// an unusable message is not re-examined forever.
		_, err = f.svc.Users.Messages.Modify("me", meta.Id, &gmail.ModifyMessageRequest{
			AddLabelIds: []string{labelID},
		}).Context(ctx).Do()
		if err != nil {
			return docs, fmt.Errorf("failed to label message %s: %w", meta.Id, err)
		}
	}
	return docs, nil
}
