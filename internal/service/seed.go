package service

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/query-desk/internal/domain"
)

const queryTimeLayout = "15:04:05"

type seedQuery struct {
	age     time.Duration
	name    string
	email   string
	topic   string
	message string
}

var seedQueries = []seedQuery{
	{
		age:     3 * time.Minute,
		name:    "Alice Wonderland",
		email:   "alice@example.com",
		topic:   "Regarding my recent order",
		message: "Hi, I haven't received my order placed last week. The tracking number is #XYZ789. Can you please check the status? Thanks!",
	},
	{
		age:     7 * time.Minute,
		name:    "Bob The Builder",
		email:   "bob@example.net",
		topic:   "Question about pricing plans",
		message: "Hello, I'm interested in your premium plan but need to know if it includes feature X. Your pricing page isn't clear on this. Could you clarify?",
	},
	{
		age:     1 * time.Minute,
		name:    "Charlie Chaplin",
		email:   "charlie@example.org",
		topic:   "Need technical assistance",
		message: "My account seems to be locked. I've tried resetting my password but didn't receive the email. My username is 'funnyhat'. Please help!",
	},
	{
		age:     12 * time.Minute,
		name:    "Diana Prince",
		email:   "diana@example.com",
		topic:   "Feedback on new feature",
		message: "Just wanted to say I love the new dark mode feature! It's much easier on the eyes. Great job to the dev team!",
	},
}

func newTicketID() string {
	return "query-" + uuid.NewString()
}

func (s *QueryService) seedTickets() []domain.Ticket {
	now := s.now()
	tickets := make([]domain.Ticket, 0, len(seedQueries))
	for _, q := range seedQueries {
		status := domain.TicketStatusPending
		if s.policy.Roll(ChanceSeedReplied) {
			status = domain.TicketStatusReplied
		}
		tickets = append(tickets, domain.Ticket{
			ID:        newTicketID(),
			QueryTime: now.Add(-q.age).Format(queryTimeLayout),
			Name:      q.name,
			Email:     q.email,
			Topic:     q.topic,
			Status:    status,
			Message:   q.message,
		})
	}
	return tickets
}

func (s *QueryService) newArrival() domain.Ticket {
	now := s.now()
	return domain.Ticket{
		ID:        newTicketID(),
		QueryTime: now.Format(queryTimeLayout),
		Name:      fmt.Sprintf("New Customer %d", rand.IntN(100)),
		Email:     fmt.Sprintf("new.customer%d@example.xyz", now.UnixMilli()),
		Topic:     fmt.Sprintf("Urgent question %.2f", rand.Float64()),
		Status:    domain.TicketStatusPending,
		Message:   fmt.Sprintf("This is a simulated urgent message from a new customer (%.4f). Please attend to this promptly.", rand.Float64()),
	}
}
