package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateParty    OutboxAggregateType = "party"
	AggregateSupplier OutboxAggregateType = "supplier"
	AggregateProduct  OutboxAggregateType = "product"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateParty,
	AggregateSupplier,
	AggregateProduct,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSupplierMaterialized        OutboxEventType = "supplier_materialized"
	EventSupplierPaymentConfigSynced OutboxEventType = "supplier_payment_config_synced"
	EventSupplierPurchaseRecorded    OutboxEventType = "supplier_purchase_recorded"
	EventSupplierLinkUpserted        OutboxEventType = "supplier_link_upserted"
	EventPartyRoleUpgraded           OutboxEventType = "party_role_upgraded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSupplierMaterialized,
	EventSupplierPaymentConfigSynced,
	EventSupplierPurchaseRecorded,
	EventSupplierLinkUpserted,
	EventPartyRoleUpgraded,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
