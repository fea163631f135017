// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names double as routing keys on the default exchange.
const (
	DistributionRecordedQueue = "distribution.recorded"
	GrievanceFiledQueue       = "grievance.filed"
)

// DistributionRecordedEvent is published after a public distribution
// submission has been committed.  Amounts are decimal strings so consumers
// never see float rounding.
type DistributionRecordedEvent struct {
	RecordID         uint64 `json:"record_id"`
	FamilyID         uint64 `json:"family_id"`
	UniqueFamilyID   string `json:"unique_family_id"`
	VillageName      string `json:"village_name"`
	NumMembers       int    `json:"num_members"`
	RiceReceivedKg   string `json:"rice_received_kg"`
	EntitlementKg    string `json:"entitlement_kg"`
	DeficitKg        string `json:"deficit_kg"`
	DistributionDate string `json:"distribution_date"`
	RecordedAt       string `json:"recorded_at"`
}

// GrievanceFiledEvent is published after a grievance has been stored.
type GrievanceFiledEvent struct {
	GrievanceID uint64 `json:"grievance_id"`
	TrackingID  string `json:"tracking_id"`
	Subject     string `json:"subject"`
	HasImage    bool   `json:"has_image"`
	FiledAt     string `json:"filed_at"`
}
