package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/auth"
	"github.com/cybersturmer/pmdragon-core-api/internal/config"
	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
	"github.com/cybersturmer/pmdragon-core-api/internal/metrics"
	"github.com/cybersturmer/pmdragon-core-api/internal/mq"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
)

// AuthService covers credentials, tokens and the three email-keyed
// flows: registration, workspace invitation and forgot password.
type AuthService struct {
	cfg        config.Config
	log        zerolog.Logger
	persons    *repo.PersonsRepo
	workspaces *repo.WorkspacesRepo
	requests   *repo.RequestsRepo
	queue      EmailQueue
}

func NewAuthService(cfg config.Config, log zerolog.Logger,
	persons *repo.PersonsRepo, workspaces *repo.WorkspacesRepo,
	requests *repo.RequestsRepo, queue EmailQueue) *AuthService {
	return &AuthService{
		cfg: cfg, log: log,
		persons: persons, workspaces: workspaces, requests: requests,
		queue: queue,
	}
}

// ObtainToken checks credentials and issues an access token.
func (s *AuthService) ObtainToken(ctx context.Context, username, password string) (string, domain.Person, error) {
	person, err := s.persons.GetByUsername(ctx, username)
	if err != nil {
		return "", domain.Person{}, domain.NewError(domain.CodeUnauthorized, domain.ErrInvalidCredentials)
	}
	if !person.IsActive || !auth.CheckPassword(password, person.PasswordHash) {
		return "", domain.Person{}, domain.NewError(domain.CodeUnauthorized, domain.ErrInvalidCredentials)
	}

	token, err := auth.GenerateToken(person.ID, s.cfg.JWTSecret, s.cfg.JWTAccessTTL)
	if err != nil {
		return "", domain.Person{}, err
	}
	if err := s.persons.TouchLastLogin(ctx, person.ID, time.Now()); err != nil {
		s.log.Warn().Err(err).Int64("person", person.ID).Msg("touch last login failed")
	}
	return token, person, nil
}

// RequestRegistration records an email + desired workspace prefix and
// queues the confirmation email. The account itself is created later,
// when the emailed key comes back.
func (s *AuthService) RequestRegistration(ctx context.Context, email, prefixURL string) (domain.ParticipationRequest, error) {
	key, err := newRequestKey()
	if err != nil {
		return domain.ParticipationRequest{}, err
	}

	req, err := s.requests.Create(ctx, domain.ParticipationRequest{
		Kind:      domain.RequestRegistration,
		Key:       key,
		Email:     email,
		PrefixURL: prefixURL,
		ExpiredAt: time.Now().Add(s.cfg.RequestTTL),
	})
	if err != nil {
		return domain.ParticipationRequest{}, err
	}

	s.enqueueEmail(ctx, mq.KeyEmailRegistration, mq.EmailJob{
		Email:     email,
		Key:       key,
		PrefixURL: prefixURL,
		RequestID: req.ID,
	}, req.ID)
	return req, nil
}

// CompleteRegistration turns a valid registration key plus credentials
// into a person and, when the request carried a workspace prefix, the
// person's first workspace.
func (s *AuthService) CompleteRegistration(ctx context.Context, key, username, password, firstName, lastName string) (domain.Person, error) {
	req, err := s.requests.GetValidByKey(ctx, domain.RequestRegistration, key)
	if err != nil {
		return domain.Person{}, domain.NewError(domain.CodeNotFound, domain.ErrRequestExpired)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Person{}, err
	}
	person, err := s.persons.Create(ctx, domain.Person{
		Username:     username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	})
	if err != nil {
		return domain.Person{}, err
	}

	if req.PrefixURL != "" {
		if _, err := s.workspaces.Create(ctx, domain.Workspace{
			PrefixURL: req.PrefixURL,
			OwnedByID: person.ID,
		}); err != nil {
			s.log.Error().Err(err).Str("prefix", req.PrefixURL).Msg("workspace create on registration failed")
		}
	}

	if err := s.requests.Accept(ctx, req.ID); err != nil {
		s.log.Warn().Err(err).Int64("request", req.ID).Msg("accept registration request failed")
	}
	return person, nil
}

// Invite creates an invitation request per email and queues the
// invitation letters.
func (s *AuthService) Invite(ctx context.Context, workspaceID int64, emails []string) ([]domain.ParticipationRequest, error) {
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ParticipationRequest, 0, len(emails))
	for _, email := range emails {
		key, err := newRequestKey()
		if err != nil {
			return nil, err
		}
		req, err := s.requests.Create(ctx, domain.ParticipationRequest{
			Kind:        domain.RequestInvitation,
			Key:         key,
			Email:       email,
			PrefixURL:   ws.PrefixURL,
			WorkspaceID: &ws.ID,
			ExpiredAt:   time.Now().Add(s.cfg.RequestTTL),
		})
		if err != nil {
			return nil, err
		}
		s.enqueueEmail(ctx, mq.KeyEmailInvitation, mq.EmailJob{
			Email:     email,
			Key:       key,
			Workspace: ws.PrefixURL,
			RequestID: req.ID,
		}, req.ID)
		out = append(out, req)
	}
	return out, nil
}

// AcceptInvitation resolves an invitation key into workspace
// membership, creating the person first when the email is new.
func (s *AuthService) AcceptInvitation(ctx context.Context, key, username, password string) (domain.Person, error) {
	req, err := s.requests.GetValidByKey(ctx, domain.RequestInvitation, key)
	if err != nil {
		return domain.Person{}, domain.NewError(domain.CodeNotFound, domain.ErrRequestExpired)
	}
	if req.WorkspaceID == nil {
		return domain.Person{}, domain.NewError(domain.CodeConflict, domain.ErrRequestExpired)
	}

	person, err := s.persons.GetByEmail(ctx, req.Email)
	if err != nil {
		hash, hashErr := auth.HashPassword(password)
		if hashErr != nil {
			return domain.Person{}, hashErr
		}
		person, err = s.persons.Create(ctx, domain.Person{
			Username:     username,
			Email:        req.Email,
			PasswordHash: hash,
			IsActive:     true,
		})
		if err != nil {
			return domain.Person{}, err
		}
	}

	if err := s.workspaces.AddParticipant(ctx, *req.WorkspaceID, person.ID); err != nil {
		return domain.Person{}, err
	}
	if err := s.requests.Accept(ctx, req.ID); err != nil {
		s.log.Warn().Err(err).Int64("request", req.ID).Msg("accept invitation request failed")
	}
	return person, nil
}

// RequestPasswordReset queues a reset letter when the email belongs to
// someone. Unknown emails return success too, so the endpoint does not
// leak which addresses are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.persons.GetByEmail(ctx, email); err != nil {
		s.log.Info().Str("email", email).Msg("password reset for unknown email ignored")
		return nil
	}

	key, err := newRequestKey()
	if err != nil {
		return err
	}
	req, err := s.requests.Create(ctx, domain.ParticipationRequest{
		Kind:      domain.RequestForgot,
		Key:       key,
		Email:     email,
		ExpiredAt: time.Now().Add(s.cfg.RequestTTL),
	})
	if err != nil {
		return err
	}

	s.enqueueEmail(ctx, mq.KeyEmailForgot, mq.EmailJob{
		Email:     email,
		Key:       key,
		RequestID: req.ID,
	}, req.ID)
	return nil
}

// ResetPassword exchanges a valid forgot-password key for a new
// password.
func (s *AuthService) ResetPassword(ctx context.Context, key, newPassword string) error {
	req, err := s.requests.GetValidByKey(ctx, domain.RequestForgot, key)
	if err != nil {
		return domain.NewError(domain.CodeNotFound, domain.ErrRequestExpired)
	}

	person, err := s.persons.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.persons.SetPassword(ctx, person.ID, hash); err != nil {
		return err
	}
	return s.requests.Accept(ctx, req.ID)
}

// enqueueEmail publishes the job and flips is_email_sent once the
// queue accepted it; the worker owns actual delivery.
func (s *AuthService) enqueueEmail(ctx context.Context, routingKey string, job mq.EmailJob, requestID int64) {
	if err := s.queue.Publish(ctx, routingKey, job); err != nil {
		s.log.Error().Err(err).Str("routing_key", routingKey).Msg("email job publish failed")
		return
	}
	metrics.EmailJobsPublished.WithLabelValues(routingKey).Inc()
	if err := s.requests.MarkEmailSent(ctx, requestID); err != nil {
		s.log.Warn().Err(err).Int64("request", requestID).Msg("mark email sent failed")
	}
}
