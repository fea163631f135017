package model

import "time"

// Family is a registered aid-recipient household as stored in the
// `families` table.  ContactNumber is the identity: at most one row exists
// per normalized number and resubmissions update the other attributes in
// place.
//
// Fields:
//  ID             – primary key identifier.
//  HeadName       – name of the head of the family.
//  ContactNumber  – normalized phone number, unique.
//  NumMembers     – household size, at least 1.
//  VillageName    – village the family lives in.
//  UniqueFamilyID – public label (FAM-XXXXXXXX) assigned on creation.
//  CreatedAt      – timestamp of creation.
type Family struct {
	ID             uint64    `json:"id"`
	HeadName       string    `json:"familyHeadName"`
	ContactNumber  string    `json:"contactNumber"`
	NumMembers     int       `json:"numMembers"`
	VillageName    string    `json:"villageName"`
	UniqueFamilyID string    `json:"uniqueFamilyId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FamilyInput carries the mutable attributes of a public submission.
type FamilyInput struct {
	ContactNumber string
	HeadName      string
	NumMembers    int
	VillageName   string
}
