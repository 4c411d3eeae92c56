package dto

import "encoding/json"

type IdentityEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type IdentityEmailAddress struct {
	Id           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// IdentityUserData is the user object carried by user.created / user.updated.
type IdentityUserData struct {
	Id                    string                 `json:"id"`
	FirstName             string                 `json:"first_name"`
	LastName              string                 `json:"last_name"`
	ImageURL              string                 `json:"image_url"`
	PrimaryEmailAddressId string                 `json:"primary_email_address_id"`
	EmailAddresses        []IdentityEmailAddress `json:"email_addresses"`
}

// PrimaryEmail falls back to the first address when no primary is flagged.
func (d IdentityUserData) PrimaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.Id == d.PrimaryEmailAddressId {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

type IdentityDeletedData struct {
	Id      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type WebhookResult struct {
	Type    string `json:"type"`
	Handled bool   `json:"handled"`
}
