package order

// Status is the lifecycle state of a purchase order. The approval workflow
// owns transitions; the audit engine runs while an order is StatusInAudit and
// only advises on the next step.
type Status string

const (
	StatusDraft           Status = "draft_ba"
	StatusPendingBMO      Status = "pending_bmo"
	StatusAuditRequired   Status = "audit_required"
	StatusInAudit         Status = "in_audit"
	StatusNeedsComplement Status = "needs_complement"
	StatusApproved        Status = "approved_bmo"
	StatusRejected        Status = "rejected_bmo"
	StatusSentSupplier    Status = "sent_supplier"
)

var transitions = map[Status][]Status{
	StatusDraft:         {StatusPendingBMO},
	StatusPendingBMO:    {StatusAuditRequired},
	StatusAuditRequired: {StatusInAudit},
	StatusInAudit:       {StatusNeedsComplement, StatusApproved, StatusRejected},
	StatusApproved:      {StatusSentSupplier},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingBMO, StatusAuditRequired, StatusInAudit,
		StatusNeedsComplement, StatusApproved, StatusRejected, StatusSentSupplier:
		return true
	}
	return false
}

// CanTransition reports whether the workflow allows moving from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
