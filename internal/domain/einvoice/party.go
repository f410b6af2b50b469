package einvoice

// DefaultConsumerIdentifier is the buyer identifier used for walk-in
// consumers without a business tax ID
const DefaultConsumerIdentifier = "0000000000"

// SellerInfo is the seller identity block embedded in the invoice main
// record. Identifier and Name are mandatory for issuance.
type SellerInfo struct {
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Telephone     string `json:"telephone"`
	Email         string `json:"email"`
	Facsimile     string `json:"facsimile"`
	BankCode      string `json:"bank_code"`
	BankAccount   string `json:"bank_account"`
}

// Validate checks the required seller identity fields
func (s SellerInfo) Validate() error {
	if s.Identifier == "" {
		return NewValidationError("Seller identifier is required")
	}
	if s.Name == "" {
		return NewValidationError("Seller name is required")
	}
	return nil
}

// BuyerInfo is the buyer identity block. A blank identifier is
// normalised to the default consumer code.
type BuyerInfo struct {
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Telephone     string `json:"telephone"`
	Email         string `json:"email"`
	Facsimile     string `json:"facsimile"`
}

// Normalized returns a copy with consumer defaults applied
func (b BuyerInfo) Normalized() BuyerInfo {
	if b.Identifier == "" {
		b.Identifier = DefaultConsumerIdentifier
	}
	if b.Name == "" {
		b.Name = "消費者"
	}
	return b
}

// CarrierInfo identifies the electronic carrier an invoice is stored on
// (mobile barcode, citizen digital certificate, ...)
type CarrierInfo struct {
	Type string `json:"type"`
	ID1  string `json:"id1"`
	ID2  string `json:"id2"`
}

// IsPresent reports whether any carrier information was supplied
func (c CarrierInfo) IsPresent() bool {
	return c.Type != "" || c.ID1 != "" || c.ID2 != ""
}

// Validate checks that an identifier accompanies the carrier type
func (c CarrierInfo) Validate() error {
	if c.Type != "" && c.ID1 == "" {
		return NewValidationError("Carrier ID is required when a carrier type is given")
	}
	if c.Type == "" && (c.ID1 != "" || c.ID2 != "") {
		return NewValidationError("Carrier type is required when a carrier ID is given")
	}
	return nil
}
