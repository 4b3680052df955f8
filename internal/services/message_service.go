package services

import (
	"context"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
	"github.com/cybersturmer/pmdragon-core-api/internal/events"
	"github.com/cybersturmer/pmdragon-core-api/internal/metrics"
	"github.com/cybersturmer/pmdragon-core-api/internal/mq"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
)

// mentionPattern matches the markup the frontend editor embeds for a
// user mention inside a message body.
var mentionPattern = regexp.MustCompile(`data-mentioned-user-id="(\d+)"`)

type MessageService struct {
	log      zerolog.Logger
	messages *repo.MessagesRepo
	persons  *repo.PersonsRepo
	queue    EmailQueue
	live     LiveEvents
}

func NewMessageService(log zerolog.Logger, messages *repo.MessagesRepo,
	persons *repo.PersonsRepo, queue EmailQueue, live LiveEvents) *MessageService {
	return &MessageService{
		log: log, messages: messages, persons: persons,
		queue: queue, live: live,
	}
}

// Create stores the message and queues a notification letter for every
// person mentioned in it, the author excluded.
func (s *MessageService) Create(ctx context.Context, m domain.IssueMessage) (domain.IssueMessage, error) {
	created, err := s.messages.Create(ctx, m)
	if err != nil {
		return domain.IssueMessage{}, err
	}

	s.notifyMentioned(ctx, created)
	s.live.Publish(ctx, created.WorkspaceID, events.Event{Entity: "issue_message", Action: "created", ID: created.ID})
	return created, nil
}

func (s *MessageService) Get(ctx context.Context, id int64) (domain.IssueMessage, error) {
	return s.messages.GetByID(ctx, id)
}

func (s *MessageService) ListByIssue(ctx context.Context, issueID int64) ([]domain.IssueMessage, error) {
	return s.messages.ListByIssue(ctx, issueID)
}

func (s *MessageService) Update(ctx context.Context, id int64, description string) (domain.IssueMessage, error) {
	updated, err := s.messages.Update(ctx, id, description)
	if err != nil {
		return domain.IssueMessage{}, err
	}
	s.live.Publish(ctx, updated.WorkspaceID, events.Event{Entity: "issue_message", Action: "updated", ID: id})
	return updated, nil
}

func (s *MessageService) Delete(ctx context.Context, id int64) error {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return err
	}
	s.live.Publish(ctx, m.WorkspaceID, events.Event{Entity: "issue_message", Action: "deleted", ID: id})
	return nil
}

func (s *MessageService) notifyMentioned(ctx context.Context, m domain.IssueMessage) {
	author, err := s.persons.GetByID(ctx, m.CreatedByID)
	if err != nil {
		s.log.Warn().Err(err).Int64("person", m.CreatedByID).Msg("message author lookup failed")
		return
	}

	for _, personID := range MentionedPersonIDs(m.Description) {
		if personID == m.CreatedByID {
			continue
		}
		mentioned, err := s.persons.GetByID(ctx, personID)
		if err != nil {
			s.log.Warn().Err(err).Int64("person", personID).Msg("mentioned person lookup failed")
			continue
		}
		job := mq.EmailJob{
			Email:   mentioned.Email,
			Author:  author.Title(),
			Message: m.Description,
			IssueID: m.IssueID,
		}
		if err := s.queue.Publish(ctx, mq.KeyEmailMention, job); err != nil {
			s.log.Error().Err(err).Int64("person", personID).Msg("mention email publish failed")
			continue
		}
		metrics.EmailJobsPublished.WithLabelValues(mq.KeyEmailMention).Inc()
	}
}

// MentionedPersonIDs extracts the person IDs mentioned in a message
// body, deduplicated, in order of first appearance.
func MentionedPersonIDs(description string) []int64 {
	matches := mentionPattern.FindAllStringSubmatch(description, -1)
	seen := map[int64]bool{}
	var out []int64
	for _, match := range matches {
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
