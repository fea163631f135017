package model

import "time"

// StatusNew is the status every grievance starts with.  Status is otherwise
// free text set by administrators.
const StatusNew = "New"

// Grievance represents a row in the `grievances` table.
//
// Fields:
//  ID          – primary key identifier.
//  TrackingID  – public token GRV-XXXXXXXX, unique and immutable.
//  Subject     – short title.
//  Content     – full complaint text.
//  ContactInfo – optional way to reach the citizen.
//  ImageName   – stored file name of the optional image ("" if none).
//  Status      – current status; "New" on creation.
//  CreatedAt   – timestamp of creation.
type Grievance struct {
	ID          uint64    // grievances.id
	TrackingID  string    // grievances.tracking_id
	Subject     string    // grievances.subject
	Content     string    // grievances.content
	ContactInfo string    // grievances.contact_info (nullable)
	ImageName   string    // grievances.image_filename (nullable)
	Status      string    // grievances.status
	CreatedAt   time.Time // grievances.created_at
}

// Comment is an administrator note attached to a grievance.
type Comment struct {
	ID          uint64    `json:"id"`
	GrievanceID uint64    `json:"-"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GrievanceView is the client representation of a grievance with its
// comments oldest first.  ImageURL is filled in by the HTTP layer, which
// knows the request host.
type GrievanceView struct {
	ID          uint64    `json:"id"`
	TrackingID  string    `json:"trackingId"`
	Subject     string    `json:"subject"`
	Content     string    `json:"content"`
	ContactInfo string    `json:"contactInfo,omitempty"`
	ImageName   string    `json:"-"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Comments    []Comment `json:"comments"`
}

// NewGrievanceView combines a grievance with its comments.
func NewGrievanceView(g Grievance, comments []Comment) GrievanceView {
	if comments == nil {
		comments = []Comment{}
	}
	return GrievanceView{
		ID:          g.ID,
		TrackingID:  g.TrackingID,
		Subject:     g.Subject,
		Content:     g.Content,
		ContactInfo: g.ContactInfo,
		ImageName:   g.ImageName,
		Status:      g.Status,
		CreatedAt:   g.CreatedAt,
		Comments:    comments,
	}
}

// Upload is an image attached to a grievance submission.
type Upload struct {
	Filename string
	Data     []byte
}

// GrievanceInput is a public grievance submission.
type GrievanceInput struct {
	Subject     string
	Content     string
	ContactInfo string
	Image       *Upload
}
