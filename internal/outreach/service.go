// AngelaMos | 2026
// service.go

package outreach

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/voqo-dev/crm-backend/internal/contact"
)

type Service struct {
	contacts contact.Repository
	now      func() time.Time
}

func NewService(contacts contact.Repository) *Service {
	return &Service{
		contacts: contacts,
		now:      time.Now,
	}
}

// QueueItem is a contact on the outreach queue with its ranked
// recommendation and one-tap contact links.
type QueueItem struct {
	Contact          contact.ContactResponse `json:"contact"`
	Urgency          string                  `json:"urgency"`
	Reason           string                  `json:"reason"`
	Method           string                  `json:"method"`
	DaysSinceContact int                     `json:"days_since_contact"`
	Links            ContactLinks            `json:"links"`
}

type AlertItem struct {
	Contact          contact.ContactResponse `json:"contact"`
	Severity         string                  `json:"severity"`
	Reason           string                  `json:"reason"`
	DaysSinceContact int                     `json:"days_since_contact"`
	Links            ContactLinks            `json:"links"`
}

type ActiveUserItem struct {
	Contact       contact.ContactResponse `json:"contact"`
	ActivityLevel string                  `json:"activity_level"`
	CallCount     int                     `json:"call_count"`
}

type ContactLinks struct {
	Tel      string `json:"tel,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
}

type Stats struct {
	TotalContacts  int `json:"total_contacts"`
	HighPriority   int `json:"high_priority"`
	NeedsContact   int `json:"needs_contact"`
	AtRisk         int `json:"at_risk"`
	PlatformActive int `json:"platform_active"`
}

// Queue ranks every contact and returns the ones needing outreach,
// most urgent first, staler entries ahead within the same urgency.
func (s *Service) Queue(ctx context.Context) ([]QueueItem, error) {
	contacts, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]QueueItem, 0, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		rec, needed := RankOutreach(c, now)
		if !needed {
			continue
		}
		items = append(items, QueueItem{
			Contact:          contact.ToContactResponse(c),
			Urgency:          rec.Urgency,
			Reason:           rec.Reason,
			Method:           rec.Method,
			DaysSinceContact: c.DaysSinceContact(now),
			Links:            buildLinks(c),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := urgencyRank(items[i].Urgency), urgencyRank(items[j].Urgency)
		if ri != rj {
			return ri < rj
		}
		return items[i].DaysSinceContact > items[j].DaysSinceContact
	})

	return items, nil
}

// HighPriority returns the at-risk contact list, critical first.
func (s *Service) HighPriority(ctx context.Context) ([]AlertItem, error) {
	contacts, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]AlertItem, 0, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		alert, included := RankSeverity(c, now)
		if !included {
			continue
		}
		items = append(items, AlertItem{
			Contact:          contact.ToContactResponse(c),
			Severity:         alert.Severity,
			Reason:           alert.Reason,
			DaysSinceContact: c.DaysSinceContact(now),
			Links:            buildLinks(c),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := severityRank(items[i].Severity), severityRank(items[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return items[i].DaysSinceContact > items[j].DaysSinceContact
	})

	return items, nil
}

// ActiveUsers lists contacts on the calling platform with their
// activity bucket, busiest first.
func (s *Service) ActiveUsers(ctx context.Context) ([]ActiveUserItem, error) {
	contacts, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]ActiveUserItem, 0, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		if !c.IsUsingPlatform {
			continue
		}
		items = append(items, ActiveUserItem{
			Contact:       contact.ToContactResponse(c),
			ActivityLevel: ClassifyActivity(c, now),
			CallCount:     c.CallCount,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CallCount > items[j].CallCount
	})

	return items, nil
}

// Stats summarizes the book of contacts for the dashboard header.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	contacts, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &Stats{TotalContacts: len(contacts)}
	for i := range contacts {
		c := &contacts[i]
		if c.Priority == contact.PriorityHigh {
			stats.HighPriority++
		}
		if _, needed := RankOutreach(c, now); needed {
			stats.NeedsContact++
		}
		if _, included := RankSeverity(c, now); included {
			stats.AtRisk++
		}
		if c.IsUsingPlatform {
			stats.PlatformActive++
		}
	}

	return stats, nil
}

// buildLinks renders the one-tap contact URIs the dashboard surfaces.
// WhatsApp wants bare digits, tel keeps the plus.
func buildLinks(c *contact.Contact) ContactLinks {
	links := ContactLinks{}
	if c.Phone != "" {
		links.Tel = "tel:" + c.Phone
		links.WhatsApp = "https://wa.me/" + strings.TrimPrefix(c.Phone, "+")
	}
	if c.Email != "" {
		links.Email = "mailto:" + c.Email
	}
	return links
}
