package service

import "unicode/utf8"

// Column limits of the schema.  Inputs past them are rejected here so they
// come back as a ValidationError instead of a strict-mode SQL error.
const (
	maxShortText = 255   // VARCHAR(255), counted in characters
	maxLongText  = 65535 // TEXT, counted in bytes
	maxMembers   = 1000
	minDateYear  = 1000
	maxDateYear  = 9999
)

func tooLong(s string) bool { return utf8.RuneCountInString(s) > maxShortText }

func tooLongText(s string) bool { return len(s) > maxLongText }
