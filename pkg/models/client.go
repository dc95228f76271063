package models

// Client is an immutable client registry entry. Name joins against the
// Client field of invoices and receipts.
type Client struct {
	Name        string
	DisplayName string
	Address     string
	Phone       string
	Email       string
}

// Label returns the display name, falling back to the registry key.
func (c Client) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}
