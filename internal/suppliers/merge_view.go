package suppliers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartkubik/foodinventory-backend/pkg/db/models"
	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

// ContactView is the flat contact shape exposed to callers.
type ContactView struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	IsPrimary bool    `json:"isPrimary"`
}

// AddressView is the flat address shape exposed to callers.
type AddressView struct {
	Line1      string  `json:"line1"`
	City       string  `json:"city"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Country    string  `json:"country"`
	IsPrimary  bool    `json:"isPrimary"`
}

// PaymentSettingsView groups the operational payment fields.
type PaymentSettingsView struct {
	AcceptsCredit          bool            `json:"acceptsCredit"`
	CreditDays             int             `json:"creditDays"`
	CreditLimit            decimal.Decimal `json:"creditLimit"`
	AcceptedPaymentMethods []string        `json:"acceptedPaymentMethods"`
	PreferredPaymentMethod *string         `json:"preferredPaymentMethod,omitempty"`
	RequiresAdvancePayment bool            `json:"requiresAdvancePayment"`
	AdvancePaymentPercent  float64         `json:"advancePaymentPercent"`
}

// EffectiveSupplier is the externally visible merge of a profile with its
// linked party. Identity fields come from the party when one is linked;
// operational fields always come from the profile.
type EffectiveSupplier struct {
	ID             uuid.UUID  `json:"id"`
	PartyID        *uuid.UUID `json:"partyId,omitempty"`
	SupplierNumber int        `json:"supplierNumber"`
	IsVirtual      bool       `json:"isVirtual"`

	Name        string  `json:"name"`
	CompanyName *string `json:"companyName,omitempty"`
	TaxID       *string `json:"taxId,omitempty"`
	TaxName     *string `json:"taxName,omitempty"`

	Contacts  []ContactView `json:"contacts"`
	Addresses []AddressView `json:"addresses"`

	PaymentSettings PaymentSettingsView `json:"paymentSettings"`

	TotalOrders       int             `json:"totalOrders"`
	TotalPurchased    decimal.Decimal `json:"totalPurchased"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	LastOrderAt       *time.Time      `json:"lastOrderAt,omitempty"`
}

// BuildEffectiveView merges profile and party with fixed precedence. A nil
// party returns the profile's cached legacy fields verbatim.
func BuildEffectiveView(profile *models.SupplierProfile, party *models.Party) EffectiveSupplier {
	view := EffectiveSupplier{
		ID:             profile.ID,
		PartyID:        profile.PartyID,
		SupplierNumber: profile.SupplierNumber,
		Name:           profile.LegacyName,
		CompanyName:    profile.LegacyCompanyName,
		TaxID:          profile.LegacyTaxID,
		TaxName:        profile.LegacyTaxName,
		Contacts:       []ContactView{},
		Addresses:      []AddressView{},
		PaymentSettings: PaymentSettingsView{
			AcceptsCredit:          profile.AcceptsCredit,
			CreditDays:             profile.CreditDays,
			CreditLimit:            profile.CreditLimit,
			AcceptedPaymentMethods: append([]string{}, profile.AcceptedPaymentMethods...),
			PreferredPaymentMethod: profile.PreferredPaymentMethod,
			RequiresAdvancePayment: profile.RequiresAdvancePayment,
			AdvancePaymentPercent:  profile.AdvancePaymentPercent,
		},
		TotalOrders:       profile.TotalOrders,
		TotalPurchased:    profile.TotalPurchased,
		AverageOrderValue: profile.AverageOrderValue,
		LastOrderAt:       profile.LastOrderAt,
	}
	if profile.LegacyContactName != nil && strings.TrimSpace(*profile.LegacyContactName) != "" {
		view.Contacts = append(view.Contacts, ContactView{Name: profile.LegacyContactName, IsPrimary: true})
	}

	if party == nil {
		return view
	}

	// Party is authoritative for identity and commercial metrics; stale
	// supplier-side copies must not mask relationship-managed data.
	view.Name = party.DisplayName()
	view.CompanyName = party.CompanyName
	taxID := party.TaxID
	view.TaxID = &taxID
	view.TaxName = party.TaxName
	view.Contacts = projectContacts(party.Contacts)
	view.Addresses = projectAddresses(party.Addresses)
	view.TotalOrders = party.TotalOrders
	view.TotalPurchased = party.TotalVolume
	if party.TotalOrders > 0 {
		view.AverageOrderValue = party.TotalVolume.Div(decimal.NewFromInt(int64(party.TotalOrders)))
	}
	if party.LastOrderAt != nil {
		view.LastOrderAt = party.LastOrderAt
	}
	return view
}

// BuildVirtualView exposes an unmaterialized party as a read-only supplier.
func BuildVirtualView(party *models.Party) EffectiveSupplier {
	taxID := party.TaxID
	return EffectiveSupplier{
		ID:          party.ID,
		IsVirtual:   true,
		Name:        party.DisplayName(),
		CompanyName: party.CompanyName,
		TaxID:       &taxID,
		TaxName:     party.TaxName,
		Contacts:    projectContacts(party.Contacts),
		Addresses:   projectAddresses(party.Addresses),
		PaymentSettings: PaymentSettingsView{
			AcceptedPaymentMethods: []string{},
		},
		TotalOrders:    party.TotalOrders,
		TotalPurchased: party.TotalVolume,
		LastOrderAt:    party.LastOrderAt,
	}
}

func projectContacts(contacts []models.PartyContact) []ContactView {
	views := make([]ContactView, 0, len(contacts))
	hasPrimary := false
	for _, contact := range contacts {
		view := ContactView{Name: contact.Name, IsPrimary: contact.IsPrimary}
		value := contact.Value
		switch contact.Channel {
		case enums.ContactChannelEmail:
			view.Email = &value
		case enums.ContactChannelPhone:
			view.Phone = &value
		default:
			continue
		}
		if contact.IsPrimary {
			hasPrimary = true
		}
		views = append(views, view)
	}
	// First contact stands in as primary when none is flagged.
	if !hasPrimary && len(views) > 0 {
		views[0].IsPrimary = true
	}
	return views
}

func projectAddresses(addresses []models.PartyAddress) []AddressView {
	views := make([]AddressView, 0, len(addresses))
	for _, address := range addresses {
		views = append(views, AddressView{
			Line1:      address.Line1,
			City:       address.City,
			State:      address.State,
			PostalCode: address.PostalCode,
			Country:    address.Country,
			IsPrimary:  address.IsPrimary,
		})
	}
	return views
}
