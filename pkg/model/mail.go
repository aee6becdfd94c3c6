package model

import (
	"strings"
	"time"
)

// Flattened attribute keys stored on the vector index entry alongside each
// mail-backed memory. Used for exact-match post-filtering of search results.
const (
	AttrSubject    = "subject"
	AttrSender     = "sender"
	AttrRecipients = "recipients"
	AttrDate       = "date"
	AttrCompany    = "company"
	AttrMessageID  = "message_id"
	AttrInReplyTo  = "in_reply_to"
)

// MailRecord holds the structured attributes of an email-shaped memory,
// keyed by (ID, Owner). The mail body lives in the Memory's content as the
// textual projection; the two are logically joined by ID and owner.
type MailRecord struct {
	ID         MemoryID  `json:"id"`
	Owner      string    `json:"owner"`
	Sender     string    `json:"sender"`
	Recipients []string  `json:"recipients,omitempty"`
	Subject    string    `json:"subject"`
	Date       time.Time `json:"date"`
	MessageID  string    `json:"message_id,omitempty"`
	InReplyTo  string    `json:"in_reply_to,omitempty"`
	Company    string    `json:"company,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// MailDetail joins a MailRecord with its Memory's content.
type MailDetail struct {
	Record  *MailRecord `json:"record"`
	Content string      `json:"content"`
}

// MailHit is a ranked search result enriched with its structured attributes.
// Record is nil when the memory exists but its mail row was lost to a partial
// create failure.
type MailHit struct {
	Record  *MailRecord `json:"record,omitempty"`
	Content string      `json:"content"`
	Score   float32     `json:"score"`
}

// DeriveCompany extracts an organization name from a sender address:
// the substring after the last '@' up to an optional closing bracket,
// lowercased and split on '.'; when more than two labels remain the leading
// one is treated as a subdomain and dropped, and the first remaining label is
// returned. "Jane <jane@mail.acme.co.uk>" yields "acme". Returns "" when the
// sender carries no derivable domain.
func DeriveCompany(sender string) string {
	at := strings.LastIndex(sender, "@")
	if at < 0 || at == len(sender)-1 {
		return ""
	}

	domain := sender[at+1:]
	if i := strings.IndexByte(domain, '>'); i >= 0 {
		domain = domain[:i]
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}

	labels := strings.Split(domain, ".")
	if len(labels) > 2 {
		labels = labels[1:]
	}
	return labels[0]
}
