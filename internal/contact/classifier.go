// AngelaMos | 2026
// classifier.go

package contact

import (
	"strings"

	"github.com/voqo-dev/crm-backend/internal/config"
)

// Classifier derives priority and company for incoming contacts from
// their email domain. Domain lists come from configuration so the
// enterprise roster can change without a deploy.
type Classifier struct {
	enterpriseDomains map[string]struct{}
	personalDomains   map[string]struct{}
}

func NewClassifier(cfg config.ClassifierConfig) *Classifier {
	c := &Classifier{
		enterpriseDomains: make(map[string]struct{}, len(cfg.EnterpriseDomains)),
		personalDomains:   make(map[string]struct{}, len(cfg.PersonalDomains)),
	}
	for _, d := range cfg.EnterpriseDomains {
		c.enterpriseDomains[strings.ToLower(d)] = struct{}{}
	}
	for _, d := range cfg.PersonalDomains {
		c.personalDomains[strings.ToLower(d)] = struct{}{}
	}
	return c
}

// DerivePriority marks contacts from enterprise domains, or whose
// company name mentions realty, as high priority.
func (c *Classifier) DerivePriority(email, company string) string {
	domain := emailDomain(email)
	if _, ok := c.enterpriseDomains[domain]; ok {
		return PriorityHigh
	}
	if strings.Contains(strings.ToLower(company), "realty") {
		return PriorityHigh
	}
	return PriorityNormal
}

// DeriveCompany guesses a company name from the email domain. Personal
// email providers yield no company; otherwise the first domain label is
// capitalized, so jane@acme.co becomes Acme.
func (c *Classifier) DeriveCompany(email string) string {
	domain := emailDomain(email)
	if domain == "" {
		return ""
	}
	if _, ok := c.personalDomains[domain]; ok {
		return ""
	}

	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func emailDomain(email string) string {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(domain))
}
