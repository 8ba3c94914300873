package enums

import "fmt"

// AuditAction labels the operations recorded in the audit log.
type AuditAction string

const (
	AuditActionMovementCreated   AuditAction = "movement_created"
	AuditActionSaleCancelled     AuditAction = "sale_cancelled"
	AuditActionStockAdjusted     AuditAction = "stock_adjusted"
	AuditActionStockRepaired     AuditAction = "stock_repaired"
	AuditActionProductCreated    AuditAction = "product_created"
	AuditActionProductUpdated    AuditAction = "product_updated"
	AuditActionProductDeleted    AuditAction = "product_deleted"
	AuditActionCategoryCreated   AuditAction = "category_created"
	AuditActionCategoryUpdated   AuditAction = "category_updated"
	AuditActionCategoryDeleted   AuditAction = "category_deleted"
	AuditActionUserRegistered    AuditAction = "user_registered"
	AuditActionUserLoggedIn      AuditAction = "user_logged_in"
	AuditActionUserDeactivated   AuditAction = "user_deactivated"
)

var validAuditActions = []AuditAction{
	AuditActionMovementCreated,
	AuditActionSaleCancelled,
	AuditActionStockAdjusted,
	AuditActionStockRepaired,
	AuditActionProductCreated,
	AuditActionProductUpdated,
	AuditActionProductDeleted,
	AuditActionCategoryCreated,
	AuditActionCategoryUpdated,
	AuditActionCategoryDeleted,
	AuditActionUserRegistered,
	AuditActionUserLoggedIn,
	AuditActionUserDeactivated,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
