// AngelaMos | 2026
// dto.go

package identity

// clerkEvent is the auth provider's webhook envelope. Only the fields
// the CRM reads are modeled.
type clerkEvent struct {
	Type string    `json:"type"`
	Data clerkUser `json:"data"`
}

type clerkUser struct {
	ID                    string              `json:"id"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []clerkEmailAddress `json:"email_addresses"`
	PhoneNumbers          []clerkPhoneNumber  `json:"phone_numbers"`
}

type clerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type clerkPhoneNumber struct {
	PhoneNumber string `json:"phone_number"`
}

// primaryEmail resolves the address flagged primary, falling back to
// the first one on file.
func (u *clerkUser) primaryEmail() string {
	for _, addr := range u.EmailAddresses {
		if addr.ID == u.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (u *clerkUser) primaryPhone() string {
	if len(u.PhoneNumbers) > 0 {
		return u.PhoneNumbers[0].PhoneNumber
	}
	return ""
}

type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type webhookErrorResponse struct {
	Error string `json:"error"`
}
