// AngelaMos | 2026
// service.go

package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voqo-dev/crm-backend/internal/core"
	"github.com/voqo-dev/crm-backend/internal/team"
)

// IngestParams is what the webhook surfaces hand the service: raw
// strings from an outside system, cleaned and defaulted here.
type IngestParams struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	CreatedAt string
	Notes     string
}

// IdentityParams comes from the auth provider's signup webhook. The
// provider's user id is authoritative and deliveries may repeat, so
// ingestion goes through the external-id upsert.
type IdentityParams struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	Phone      string
	Notes      string
}

type Service struct {
	repo       Repository
	classifier *Classifier
	roster     []string
	strategy   team.Strategy
	now        func() time.Time
}

func NewService(
	repo Repository,
	classifier *Classifier,
	roster []string,
	strategy team.Strategy,
) *Service {
	return &Service{
		repo:       repo,
		classifier: classifier,
		roster:     roster,
		strategy:   strategy,
		now:        time.Now,
	}
}

// Ingest records a contact from a notifier-style webhook. Every call
// inserts a fresh row; dedup is an operator concern on these paths.
func (s *Service) Ingest(
	ctx context.Context,
	params IngestParams,
) (*Contact, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, fmt.Errorf("ingest contact: missing email: %w", core.ErrInvalidInput)
	}

	// The upstream signup timestamp seeds created_at. No touchpoint is
	// logged yet, so last_contact stays empty until an operator reaches
	// out; the outreach queue's new-client rule keys off that gap.
	contact := &Contact{
		ID:             uuid.New().String(),
		Email:          email,
		FirstName:      strings.TrimSpace(params.FirstName),
		LastName:       strings.TrimSpace(params.LastName),
		Phone:          NormalizePhone(params.Phone),
		Company:        s.classifier.DeriveCompany(email),
		Status:         StatusTrial,
		AccountManager: s.strategy.Pick(s.roster),
		Notes:          params.Notes,
		CreatedAt:      s.parseUpstreamTime(params.CreatedAt),
	}
	contact.Priority = s.classifier.DerivePriority(email, contact.Company)

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// IngestIdentity records a signup reported by the auth provider,
// keyed on the provider's user id so redelivered webhooks refresh the
// same row instead of duplicating it.
func (s *Service) IngestIdentity(
	ctx context.Context,
	params IdentityParams,
) (*Contact, error) {
	if params.ExternalID == "" {
		return nil, fmt.Errorf("ingest identity: missing external id: %w", core.ErrInvalidInput)
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, fmt.Errorf("ingest identity: missing email: %w", core.ErrInvalidInput)
	}

	firstName := strings.TrimSpace(params.FirstName)
	lastName := strings.TrimSpace(params.LastName)
	if firstName == "" && lastName == "" {
		firstName = "Unknown User"
	}

	now := s.now()
	externalID := params.ExternalID

	contact := &Contact{
		ID:              externalID,
		ExternalID:      &externalID,
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		Phone:           NormalizePhone(params.Phone),
		Company:         s.classifier.DeriveCompany(email),
		Status:          StatusTrial,
		AccountManager:  s.strategy.Pick(s.roster),
		Notes:           params.Notes,
		LastContact:     &now,
		IsUsingPlatform: true,
	}
	contact.Priority = s.classifier.DerivePriority(email, contact.Company)

	if err := s.repo.UpsertByExternalID(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

func (s *Service) Create(
	ctx context.Context,
	req CreateContactRequest,
) (*Contact, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	company := strings.TrimSpace(req.Company)
	if company == "" {
		company = s.classifier.DeriveCompany(email)
	}

	status := req.Status
	if status == "" {
		status = StatusTrial
	}

	contact := &Contact{
		ID:             uuid.New().String(),
		Email:          email,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Phone:          NormalizePhone(req.Phone),
		Company:        company,
		Priority:       s.classifier.DerivePriority(email, company),
		Status:         status,
		AccountManager: s.strategy.Pick(s.roster),
		Notes:          req.Notes,
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Contact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*Contact, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateContactRequest,
) (*Contact, error) {
	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		contact.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FirstName != nil {
		contact.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		contact.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		contact.Phone = NormalizePhone(*req.Phone)
	}
	if req.Company != nil {
		contact.Company = strings.TrimSpace(*req.Company)
	}
	if req.Priority != nil {
		contact.Priority = *req.Priority
	}
	if req.Status != nil {
		contact.Status = *req.Status
	}
	if req.AccountManager != nil {
		contact.AccountManager = *req.AccountManager
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}
	if req.LastContact != nil {
		contact.LastContact = req.LastContact
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListContactsParams,
) ([]Contact, int, error) {
	return s.repo.List(ctx, params)
}

// upstreamTimeLayouts covers the timestamp shapes seen from the chat
// notifier and signup scripts, most specific first.
var upstreamTimeLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02T15:04:05.000000Z07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (s *Service) parseUpstreamTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now()
	}

	for _, layout := range upstreamTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	return s.now()
}
