package suppliers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartkubik/foodinventory-backend/pkg/enums"
)

// ContactInput is one reachable channel supplied at create time.
type ContactInput struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	IsPrimary bool    `json:"isPrimary"`
}

// CreateSupplierInput identifies or creates the backing party and seeds the
// initial payment settings.
type CreateSupplierInput struct {
	Name        string  `json:"name" validate:"required"`
	CompanyName *string `json:"companyName,omitempty"`
	TaxID       string  `json:"taxId" validate:"required"`
	TaxName     *string `json:"taxName,omitempty"`

	Contacts []ContactInput `json:"contacts,omitempty" validate:"dive"`

	PaymentSettings *PaymentTerms `json:"paymentSettings,omitempty"`
}

// UpdateSupplierInput is a sparse patch; nil fields stay untouched.
type UpdateSupplierInput struct {
	Name        *string `json:"name,omitempty"`
	CompanyName *string `json:"companyName,omitempty"`
	TaxName     *string `json:"taxName,omitempty"`

	AcceptsCredit          *bool            `json:"acceptsCredit,omitempty"`
	CreditDays             *int             `json:"creditDays,omitempty" validate:"omitempty,min=0"`
	CreditLimit            *decimal.Decimal `json:"creditLimit,omitempty"`
	AcceptedPaymentMethods []string         `json:"acceptedPaymentMethods,omitempty"`
	PreferredPaymentMethod *string          `json:"preferredPaymentMethod,omitempty"`
	RequiresAdvancePayment *bool            `json:"requiresAdvancePayment,omitempty"`
	AdvancePaymentPercent  *float64         `json:"advancePaymentPercent,omitempty" validate:"omitempty,min=0,max=100"`
}

// touchesPaymentSettings reports whether the patch carries any field that
// feeds the propagated payment configuration.
func (u UpdateSupplierInput) touchesPaymentSettings() bool {
	return u.AcceptsCredit != nil ||
		u.CreditDays != nil ||
		u.CreditLimit != nil ||
		u.AcceptedPaymentMethods != nil ||
		u.PreferredPaymentMethod != nil ||
		u.RequiresAdvancePayment != nil ||
		u.AdvancePaymentPercent != nil
}

// PaymentTerms carries payment fields observed on a purchase or supplied at
// create time.
type PaymentTerms struct {
	AcceptsCredit          *bool            `json:"acceptsCredit,omitempty"`
	CreditDays             *int             `json:"creditDays,omitempty"`
	CreditLimit            *decimal.Decimal `json:"creditLimit,omitempty"`
	PaymentMethods         []string         `json:"paymentMethods,omitempty"`
	PreferredPaymentMethod *string          `json:"preferredPaymentMethod,omitempty"`
	RequiresAdvancePayment *bool            `json:"requiresAdvancePayment,omitempty"`
	AdvancePaymentPercent  *float64         `json:"advancePaymentPercent,omitempty"`
}

// PurchaseFacts is what the purchase-order collaborator reports on receipt.
type PurchaseFacts struct {
	PurchaseID   uuid.UUID       `json:"purchaseId"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentTerms *PaymentTerms   `json:"paymentTerms,omitempty"`
}

// LinkFacts describes the product/supplier relationship being linked.
type LinkFacts struct {
	SupplierSKU     *string         `json:"supplierSku,omitempty"`
	CostPrice       decimal.Decimal `json:"costPrice"`
	LeadTimeDays    int             `json:"leadTimeDays"`
	MinimumOrderQty int             `json:"minimumOrderQty"`
	IsPreferred     bool            `json:"isPreferred"`
}

// SupplierSummary is one supplier inside a listing projection.
type SupplierSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProductCount int64     `json:"productCount"`
}

// RegimeGroup groups suppliers under one payment-currency regime.
type RegimeGroup struct {
	Regime    enums.PaymentCurrencyRegime `json:"regime"`
	Suppliers []SupplierSummary           `json:"suppliers"`
}

// BulkSyncResult summarizes an administrative full re-sync.
type BulkSyncResult struct {
	SuppliersProcessed   int   `json:"suppliersProcessed"`
	TotalProductsUpdated int64 `json:"totalProductsUpdated"`
	FailedSuppliers      int   `json:"failedSuppliers"`
}

// ListQuery filters the supplier listing.
type ListQuery struct {
	Search         string `json:"search,omitempty"`
	IncludeVirtual bool   `json:"includeVirtual,omitempty"`
}
