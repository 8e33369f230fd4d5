package guided

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studioflow/internal/domain"
	contractModels "studioflow/internal/domain/models/contract"
	"studioflow/internal/domain/services"
	contractSvc "studioflow/internal/domain/services/contract"
	guidedSvc "studioflow/internal/domain/services/guided"
)

// session is one in-flight build
type session struct {
	organizationID string
	builder        *Builder
	touched        time.Time
	mu             sync.Mutex
}

// Service keeps guided builds in memory until they complete or are abandoned
type Service struct {
	catalog   *Catalog
	contracts contractSvc.ContractService
	suggester services.TextSuggester
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService creates the guided-build service. suggester may be nil.
func NewService(
	catalog *Catalog,
	contracts contractSvc.ContractService,
	suggester services.TextSuggester,
	logger *slog.Logger,
) *Service {
	return &Service{
		catalog:   catalog,
		contracts: contracts,
		suggester: suggester,
		now:       time.Now,
		logger:    logger,
		sessions:  make(map[string]*session),
	}
}

var _ guidedSvc.GuidedService = (*Service)(nil)

// StartSession opens a new build at the first question
func (s *Service) StartSession(ctx context.Context, organizationID string) (*guidedSvc.SessionView, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, &domain.ValidationError{Message: "organization is required"}
	}

	id := uuid.NewString()
	sess := &session{
		organizationID: organizationID,
		builder:        NewBuilder(s.catalog),
		touched:        s.now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("guided build started", "session_id", id, "organization_id", organizationID, "catalog", s.catalog.Name)
	return sess.builder.View(id), nil
}

// withSession runs fn with the session locked
func (s *Service) withSession(id, organizationID string, fn func(*session) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || sess.organizationID != organizationID {
		return &domain.NotFoundError{Message: "guided build not found"}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = s.now()
	return fn(sess)
}

// GetSession returns the current view of a build
func (s *Service) GetSession(ctx context.Context, id, organizationID string) (*guidedSvc.SessionView, error) {
	var view *guidedSvc.SessionView
	err := s.withSession(id, organizationID, func(sess *session) error {
		view = sess.builder.View(id)
		return nil
	})
	return view, err
}

// Submit feeds one line of input to the build
func (s *Service) Submit(ctx context.Context, id, organizationID, input string) (*guidedSvc.SessionView, error) {
	var view *guidedSvc.SessionView
	err := s.withSession(id, organizationID, func(sess *session) error {
		sess.builder.Submit(input)
		view = sess.builder.View(id)
		return nil
	})
	return view, err
}

// Undo steps the build back one action
func (s *Service) Undo(ctx context.Context, id, organizationID string) (*guidedSvc.SessionView, error) {
	var view *guidedSvc.SessionView
	err := s.withSession(id, organizationID, func(sess *session) error {
		if !sess.builder.Undo() {
			return fmt.Errorf("%w: nothing to undo", domain.ErrConflict)
		}
		view = sess.builder.View(id)
		return nil
	})
	return view, err
}

// Redo re-applies an undone action
func (s *Service) Redo(ctx context.Context, id, organizationID string) (*guidedSvc.SessionView, error) {
	var view *guidedSvc.SessionView
	err := s.withSession(id, organizationID, func(sess *session) error {
		if !sess.builder.Redo() {
			return fmt.Errorf("%w: nothing to redo", domain.ErrConflict)
		}
		view = sess.builder.View(id)
		return nil
	})
	return view, err
}

// SuggestAnswers asks the AI collaborator about the current question.
// The call runs without holding the session; results are kept only if the
// build has not moved on meanwhile.
func (s *Service) SuggestAnswers(ctx context.Context, id, organizationID string) ([3]string, error) {
	var (
		none     [3]string
		prompt   string
		cursor   int
		known    string
		askingOK bool
	)
	err := s.withSession(id, organizationID, func(sess *session) error {
		q := sess.builder.Current()
		if q == nil {
			return nil
		}
		askingOK = true
		prompt = q.Prompt
		cursor = sess.builder.Cursor()
		known = sess.builder.Known()
		return nil
	})
	if err != nil || !askingOK || s.suggester == nil {
		return none, err
	}

	suggestions := s.suggester.SuggestAnswers(ctx, prompt, known)

	err = s.withSession(id, organizationID, func(sess *session) error {
		if sess.builder.Current() != nil && sess.builder.Cursor() == cursor {
			sess.builder.SetSuggestions(suggestions)
		}
		return nil
	})
	return suggestions, err
}

// Complete creates a draft contract from a reviewed build and ends the session
func (s *Service) Complete(ctx context.Context, id, organizationID string, req *guidedSvc.CompleteRequest, actor contractModels.Actor) (*contractModels.Contract, error) {
	providerName := actor.Name
	if providerName == "" {
		providerName = actor.Email
	}
	if providerName == "" {
		providerName = "Provider"
	}

	var draft Draft
	err := s.withSession(id, organizationID, func(sess *session) error {
		if sess.builder.Phase() != guidedSvc.PhaseReview {
			return guidedSvc.ErrNotInReview
		}
		draft = sess.builder.Draft(providerName)
		return nil
	})
	if err != nil {
		return nil, err
	}

	clientID := ""
	if req != nil {
		clientID = req.ClientID
	}

	created, err := s.contracts.CreateContract(ctx, &contractSvc.CreateContractRequest{
		OrganizationID: organizationID,
		ClientID:       clientID,
		Title:          draft.Title,
		Body:           draft.Body,
		Parties: []contractSvc.PartyInput{
			{Role: contractModels.RoleProvider, Name: providerName, Email: actor.Email},
			{Role: contractModels.RoleClient, Name: draft.ClientName, Email: draft.ClientEmail},
		},
		Variables: draft.Variables,
	}, actor)
	if err != nil {
		s.logger.Error("guided build could not create contract", "session_id", id, "error", err)
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	s.logger.Info("guided build completed", "session_id", id, "contract_id", created.ID)
	return created, nil
}

// Abandon discards a build
func (s *Service) Abandon(ctx context.Context, id, organizationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.organizationID != organizationID {
		return &domain.NotFoundError{Message: "guided build not found"}
	}
	delete(s.sessions, id)
	s.logger.Info("guided build abandoned", "session_id", id)
	return nil
}

// PruneIdle drops builds untouched for longer than maxIdle and returns how many went
func (s *Service) PruneIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	pruned := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Debug("idle guided builds pruned", "count", pruned)
	}
	return pruned
}
