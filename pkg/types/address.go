package types

// Address is the shipping destination snapshot stored on payment records.
// Persisted as a jsonb column via the gorm json serializer.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// IsZero reports whether no field was provided.
func (a Address) IsZero() bool {
	return a == Address{}
}
