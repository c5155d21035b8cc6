package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Access decisions about HR data fall here: they must survive audits of
	// who saw what and why.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and
	// forensics. Denials, suspicious role detections, and exhausted retries
	// feed into alerting pipelines.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory
	Timestamp  time.Time
	EmployeeID string
	Subject    string
	Action     string
	Decision   string
	Reason     string
	// RequestID is the correlation ID from HTTP request context.
	RequestID string
	// IP is the client address, kept for security forensics.
	IP string
	// SecurityFlags carries the advisory flags attached to a verification
	// outcome, when any.
	SecurityFlags []string
}

type AuditEvent string

const (
	// Verification events
	EventAccessVerified       AuditEvent = "access_verified"
	EventAccessDenied         AuditEvent = "access_denied"
	EventAccessPending        AuditEvent = "access_pending"
	EventRetryScheduled       AuditEvent = "verification_retry_scheduled"
	EventRetriesExhausted     AuditEvent = "verification_exhausted"
	EventProfileFetchFailed   AuditEvent = "profile_fetch_failed"
	EventProfileWaitTimedOut  AuditEvent = "profile_wait_timed_out"
	EventVerificationInternal AuditEvent = "verification_internal_error"

	// Role detection events
	EventRoleDetected   AuditEvent = "role_detected"
	EventSuspiciousRole AuditEvent = "suspicious_role_pattern"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - the access decision record itself
	EventAccessVerified: CategoryCompliance,
	EventAccessDenied:   CategoryCompliance,

	// Security events - feed into SIEM and alerting
	EventRetriesExhausted:     CategorySecurity,
	EventSuspiciousRole:       CategorySecurity,
	EventVerificationInternal: CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventAccessPending:       CategoryOperations,
	EventRetryScheduled:      CategoryOperations,
	EventProfileFetchFailed:  CategoryOperations,
	EventProfileWaitTimedOut: CategoryOperations,
	EventRoleDetected:        CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
