// Package chatbot answers FAQ-style questions with a fixed, ordered table
// of keyword rules.  The first rule whose predicate matches wins.  Answers
// are bilingual: Hindi followed by English in parentheses.
package chatbot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// Config carries the values quoted in answers.
type Config struct {
	PerPersonKg   decimal.Decimal
	PricePerKg    int
	ContactName   string
	ContactNumber string
}

// AnnouncementSource yields the newest announcement, ok=false if none.
type AnnouncementSource interface {
	Latest(ctx context.Context) (model.Announcement, bool, error)
}

// GrievanceSource looks grievances up by tracking id.
type GrievanceSource interface {
	GetByTrackingID(ctx context.Context, token string) (model.GrievanceView, error)
}

// Question is a user question in the three casings rules look at.
type Question struct {
	Raw   string
	Lower string
	Upper string
}

func newQuestion(raw string) Question {
	return Question{Raw: raw, Lower: strings.ToLower(raw), Upper: strings.ToUpper(raw)}
}

// ContainsAny reports whether the lower-cased question contains any of
// words.
func (q Question) ContainsAny(words ...string) bool {
	for _, w := range words {
		if strings.Contains(q.Lower, w) {
			return true
		}
	}
	return false
}

// Rule is one entry of the rule table.
type Rule struct {
	Name   string
	Match  func(q Question) bool
	Answer func(ctx context.Context, q Question) (string, error)
}

// Bot evaluates the rule table.
type Bot struct {
	cfg           Config
	announcements AnnouncementSource
	grievances    GrievanceSource
	rules         []Rule
}

// New returns a Bot using cfg and the given data sources.
func New(cfg Config, announcements AnnouncementSource, grievances GrievanceSource) *Bot {
	b := &Bot{cfg: cfg, announcements: announcements, grievances: grievances}
	b.rules = b.defaultRules()
	return b
}

// Rules returns the rule names in evaluation order.
func (b *Bot) Rules() []string {
	names := make([]string, 0, len(b.rules))
	for _, r := range b.rules {
		names = append(names, r.Name)
	}
	return names
}

// Answer returns the reply of the first matching rule, or the fallback.
func (b *Bot) Answer(ctx context.Context, question string) (string, error) {
	q := newQuestion(question)
	for _, r := range b.rules {
		if r.Match(q) {
			return r.Answer(ctx, q)
		}
	}
	return fallbackAnswer, nil
}

var (
	numberPattern   = regexp.MustCompile(`\d+`)
	trackingPattern = regexp.MustCompile(`GRV-[A-Z0-9]{8}`)
)

const (
	identityAnswer = "मैं निष्पक्ष चावल वितरण पोर्टल के लिए एक चैटबॉट सहायक हूँ। मैं आपको चावल के हक़, वितरण की तारीखों और शिकायत की स्थिति के बारे में सवालों में मदद कर सकता हूँ। " +
		"(I am a chatbot assistant for the Fair Rice Distribution Portal. I can help you with questions about rice entitlement, distribution dates, and grievance status.)"
	askMembersAnswer = "चावल की मात्रा जानने के लिए, कृपया अपने परिवार के सदस्यों की संख्या बताएं। " +
		"(To know the rice entitlement, please tell me the number of members in your family.)"
	noAnnouncementAnswer = "अभी कोई नई घोषणा नहीं है। (There are no new announcements at the moment.)"
	askTrackingAnswer    = "शिकायत की स्थिति जानने के लिए, कृपया अपनी ट्रैकिंग आईडी प्रदान करें, जैसे 'status GRV-1234ABCD'। " +
		"(To check grievance status, please provide your tracking ID, e.g., 'status GRV-1234ABCD'.)"
	documentsAnswer = "आपको अपना आधार कार्ड और राशन कार्ड लाना होगा। (You will need to bring your Aadhaar card and Ration card.)"
	freeRiceAnswer  = "चावल सरकारी योजना के तहत मुफ्त है। (The rice is free under the government scheme.)"
	fallbackAnswer  = "माफ़ कीजिए, मैं आपका सवाल समझ नहीं पाया। आप चावल की मात्रा, अगली वितरण तिथि, या शिकायत की स्थिति के बारे में पूछ सकते हैं।\n" +
		"(Sorry, I couldn't understand your question. You can ask about rice entitlement, the next distribution date, or grievance status.)"
)

func constant(s string) func(context.Context, Question) (string, error) {
	return func(context.Context, Question) (string, error) { return s, nil }
}

func (b *Bot) defaultRules() []Rule {
	return []Rule{
		{
			Name:   "identity",
			Match:  func(q Question) bool { return q.ContainsAny("who are you", "your name", "kya ho", "kaun ho", "नाम क्या है") },
			Answer: constant(identityAnswer),
		},
		{
			Name: "entitlement",
			Match: func(q Question) bool {
				return q.ContainsAny("kitna", "how much") && q.ContainsAny("chawal", "rice")
			},
			Answer: b.entitlement,
		},
		{
			Name:   "latest-announcement",
			Match:  func(q Question) bool { return q.ContainsAny("kab hai", "when is", "agla", "next") },
			Answer: b.latestAnnouncement,
		},
		{
			Name:   "grievance-status",
			Match:  func(q Question) bool { return q.ContainsAny("status", "shikayat", "स्थिति") },
			Answer: b.grievanceStatus,
		},
		{
			Name:   "documents",
			Match:  func(q Question) bool { return q.ContainsAny("document", "dastaavez", "kagaz", "कागजात") },
			Answer: constant(documentsAnswer),
		},
		{
			Name:   "price",
			Match:  func(q Question) bool { return q.ContainsAny("price", "daam", "कीमत", "kitne ka") },
			Answer: b.price,
		},
		{
			Name:   "contact",
			Match:  func(q Question) bool { return q.ContainsAny("help", "madad", "contact", "सहायता", "bat karni") },
			Answer: b.contact,
		},
	}
}

func (b *Bot) entitlement(_ context.Context, q Question) (string, error) {
	m := numberPattern.FindString(q.Lower)
	members, err := strconv.Atoi(m)
	if m == "" || err != nil {
		return askMembersAnswer, nil
	}
	kg := decimal.NewFromInt(int64(members)).Mul(b.cfg.PerPersonKg).StringFixed(1)
	return fmt.Sprintf("%d सदस्यों के परिवार का हक़ %s किलो चावल है। (A family of %d is entitled to %s kg of rice.)",
		members, kg, members, kg), nil
}

func (b *Bot) latestAnnouncement(ctx context.Context, _ Question) (string, error) {
	a, ok, err := b.announcements.Latest(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return noAnnouncementAnswer, nil
	}
	return "नवीनतम घोषणा (Latest Announcement):\n" + a.Title + "\n" + a.Content, nil
}

func (b *Bot) grievanceStatus(ctx context.Context, q Question) (string, error) {
	id := trackingPattern.FindString(q.Upper)
	if id == "" {
		return askTrackingAnswer, nil
	}
	g, err := b.grievances.GetByTrackingID(ctx, id)
	if err != nil {
		return fmt.Sprintf("ट्रैकिंग आईडी %s नहीं मिली। कृपया दोबारा जांचें। (Tracking ID %s was not found. Please check again.)", id, id), nil
	}
	return fmt.Sprintf("आपकी शिकायत %s की स्थिति '%s' है। (The status of your grievance %s is '%s'.)",
		id, g.Status, id, g.Status), nil
}

func (b *Bot) price(context.Context, Question) (string, error) {
	if b.cfg.PricePerKg <= 0 {
		return freeRiceAnswer, nil
	}
	return fmt.Sprintf("चावल सरकारी योजना के तहत %d रुपये प्रति किलो है। (The rice is ₹%d per kg under the government scheme.)",
		b.cfg.PricePerKg, b.cfg.PricePerKg), nil
}

func (b *Bot) contact(context.Context, Question) (string, error) {
	return fmt.Sprintf("किसी भी समस्या के लिए, आप %s से इस नंबर पर संपर्क कर सकते हैं: %s। (For any issues, you can contact %s at this number: %s.)",
		b.cfg.ContactName, b.cfg.ContactNumber, b.cfg.ContactName, b.cfg.ContactNumber), nil
}
