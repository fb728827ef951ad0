package types

// ContactInfo is the buyer contact snapshot captured at payment initiation.
type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}
