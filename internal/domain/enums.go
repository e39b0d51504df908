package domain

import "strings"

// ProductStatus represents the lifecycle status of a catalog product
type ProductStatus string

const (
	ProductStatusActive      ProductStatus = "ACTIVE"
	ProductStatusInactive    ProductStatus = "INACTIVE"
	ProductStatusAvailable   ProductStatus = "AVAILABLE"
	ProductStatusBorrowed    ProductStatus = "BORROWED"
	ProductStatusMaintenance ProductStatus = "MAINTENANCE"
	ProductStatusDamaged     ProductStatus = "DAMAGED"
)

// IsValid checks if the product status is valid
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive,
		ProductStatusInactive,
		ProductStatusAvailable,
		ProductStatusBorrowed,
		ProductStatusMaintenance,
		ProductStatusDamaged:
		return true
	default:
		return false
	}
}

// IsBorrowable reports whether products in this status can be requested
func (s ProductStatus) IsBorrowable() bool {
	return s == ProductStatusActive || s == ProductStatusAvailable
}

// Priority represents the urgency of a requested cart line
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes case; empty input yields PriorityNormal
func ParsePriority(s string) (Priority, bool) {
	if strings.TrimSpace(s) == "" {
		return PriorityNormal, true
	}
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.IsValid()
}

// RequestStatus represents the status of a submitted borrowing request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
	RequestStatusBorrowed RequestStatus = "BORROWED"
	RequestStatusReturned RequestStatus = "RETURNED"
	RequestStatusOverdue  RequestStatus = "OVERDUE"
)

// IsValid checks if the request status is valid
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending,
		RequestStatusApproved,
		RequestStatusRejected,
		RequestStatusBorrowed,
		RequestStatusReturned,
		RequestStatusOverdue:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s RequestStatus) CanTransitionTo(newStatus RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return newStatus == RequestStatusApproved ||
			newStatus == RequestStatusRejected
	case RequestStatusApproved:
		return newStatus == RequestStatusBorrowed
	case RequestStatusBorrowed:
		return newStatus == RequestStatusReturned ||
			newStatus == RequestStatusOverdue
	case RequestStatusOverdue:
		return newStatus == RequestStatusReturned
	case RequestStatusRejected, RequestStatusReturned:
		return false // Terminal states
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusRejected || s == RequestStatusReturned
}
