// AngelaMos | 2026
// dto.go

package contact

import (
	"time"
)

type CreateContactRequest struct {
	Email     string `json:"email"           validate:"required,email,max=255"`
	FirstName string `json:"first_name"      validate:"max=100"`
	LastName  string `json:"last_name"       validate:"max=100"`
	Phone     string `json:"phone"           validate:"max=32"`
	Company   string `json:"company"         validate:"max=255"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=trial trial_ending active payment_failed overdue canceled"`
	Notes     string `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateContactRequest struct {
	Email          *string    `json:"email,omitempty"           validate:"omitempty,email,max=255"`
	FirstName      *string    `json:"first_name,omitempty"      validate:"omitempty,max=100"`
	LastName       *string    `json:"last_name,omitempty"       validate:"omitempty,max=100"`
	Phone          *string    `json:"phone,omitempty"           validate:"omitempty,max=32"`
	Company        *string    `json:"company,omitempty"         validate:"omitempty,max=255"`
	Priority       *string    `json:"priority,omitempty"        validate:"omitempty,oneof=high normal"`
	Status         *string    `json:"status,omitempty"          validate:"omitempty,oneof=trial trial_ending active payment_failed overdue canceled"`
	AccountManager *string    `json:"account_manager,omitempty" validate:"omitempty,max=100"`
	Notes          *string    `json:"notes,omitempty"           validate:"omitempty,max=2000"`
	LastContact    *time.Time `json:"last_contact,omitempty"`
}

type ContactResponse struct {
	ID                 string     `json:"id"`
	ExternalID         *string    `json:"external_id,omitempty"`
	Email              string     `json:"email"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Name               string     `json:"name"`
	Phone              string     `json:"phone"`
	Company            string     `json:"company"`
	Priority           string     `json:"priority"`
	Status             string     `json:"status"`
	AccountManager     string     `json:"account_manager"`
	Notes              string     `json:"notes"`
	LastContact        *time.Time `json:"last_contact"`
	IsUsingPlatform    bool       `json:"is_using_platform"`
	SubscriptionStatus *string    `json:"subscription_status,omitempty"`
	ProductName        *string    `json:"product_name,omitempty"`
	PlanName           *string    `json:"plan_name,omitempty"`
	LastPaymentDate    *time.Time `json:"last_payment_date,omitempty"`
	LastActivity       *time.Time `json:"last_activity,omitempty"`
	CallCount          int        `json:"call_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type ContactListResponse struct {
	Contacts []ContactResponse `json:"contacts"`
}

type ListContactsParams struct {
	Page           int    `json:"page"`
	PageSize       int    `json:"page_size"`
	Search         string `json:"search"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	AccountManager string `json:"account_manager"`
}

func (p *ListContactsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

func (p *ListContactsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToContactResponse(c *Contact) ContactResponse {
	return ContactResponse{
		ID:                 c.ID,
		ExternalID:         c.ExternalID,
		Email:              c.Email,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Name:               c.FullName(),
		Phone:              c.Phone,
		Company:            c.Company,
		Priority:           c.Priority,
		Status:             c.Status,
		AccountManager:     c.AccountManager,
		Notes:              c.Notes,
		LastContact:        c.LastContact,
		IsUsingPlatform:    c.IsUsingPlatform,
		SubscriptionStatus: c.SubscriptionStatus,
		ProductName:        c.ProductName,
		PlanName:           c.PlanName,
		LastPaymentDate:    c.LastPaymentDate,
		LastActivity:       c.LastActivity,
		CallCount:          c.CallCount,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func ToContactResponseList(contacts []Contact) []ContactResponse {
	responses := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		responses = append(responses, ToContactResponse(&c))
	}
	return responses
}
