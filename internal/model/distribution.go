package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Kilogram amounts are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DistributionRecord is one rice-distribution event as stored in the
// `distribution_records` table.  It owns a FamilyID key only; the reverse
// direction (records of a family) is a query.
//
// Fields:
//  ID               – primary key identifier.
//  FamilyID         – family that received the rice.
//  RiceReceivedKg   – amount handed out, two fractional digits.
//  DistributionDate – calendar date of the distribution.
//  Notes            – optional free text.
//  CreatedAt        – timestamp of creation.
type DistributionRecord struct {
	ID               uint64
	FamilyID         uint64
	RiceReceivedKg   decimal.Decimal
	DistributionDate Date
	Notes            string
	CreatedAt        time.Time
}

// DistributionRow is a record joined with the family it belongs to, as
// returned by the ledger queries.
type DistributionRow struct {
	Record DistributionRecord
	Family Family
}

// DistributionRecordView is what clients see: the raw record, a snapshot
// of the family and the entitlement/deficit computed at read time.
type DistributionRecordView struct {
	ID               uint64          `json:"id"`
	RiceReceivedKg   decimal.Decimal `json:"riceReceivedKg"`
	DistributionDate Date            `json:"distributionDate"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UniqueFamilyID   string          `json:"uniqueFamilyId"`
	Family           Family          `json:"family"`
	EntitlementKg    decimal.Decimal `json:"entitlementKg"`
	DeficitKg        decimal.Decimal `json:"deficitKg"`
}

// DistributionInput is a validated public submission.
type DistributionInput struct {
	Family           FamilyInput
	RiceReceivedKg   decimal.Decimal
	DistributionDate Date
	Notes            string
}

// DateRange is an inclusive [From, To] filter on distribution dates.
type DateRange struct {
	From Date
	To   Date
}
