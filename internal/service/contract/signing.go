package contract

import (
	"context"
	"fmt"
	"sync"

	"studioflow/internal/config"
	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	contractModels "studioflow/internal/domain/models/contract"
	"studioflow/internal/domain/repositories"
	contractSvc "studioflow/internal/domain/services/contract"
)

// sessionID keys one signing tab; the same party on two devices holds two sessions
type sessionID struct {
	contractID string
	partyID    string
	deviceID   string
}

// signingService implements the SigningService interface.
// Sessions live in memory only; cancelling or restarting discards them.
type signingService struct {
	*store
	machine *Machine
	caches  repositories.SignatureCacheProvider

	mu       sync.Mutex
	sessions map[sessionID]*Session
}

// NewSigningService creates a new signing service
func NewSigningService(deps Dependencies, caches repositories.SignatureCacheProvider) contractSvc.SigningService {
	st := newStore(deps)
	if caches == nil {
		caches = NewMemorySignatureCaches()
	}
	return &signingService{
		store:    st,
		machine:  NewMachine(st.now),
		caches:   caches,
		sessions: make(map[sessionID]*Session),
	}
}

func idOf(key contractSvc.SessionKey) sessionID {
	return sessionID{contractID: key.ContractID, partyID: key.PartyID, deviceID: key.DeviceID}
}

// signingAction is the transition a party's finish will attempt
func signingAction(c *contractModels.Contract, partyID string) contractModels.Action {
	if p, ok := c.Party(partyID); ok && p.Role == contractModels.RoleProvider {
		return contractModels.ActionProviderSign
	}
	return contractModels.ActionClientSign
}

// StartSession opens (or reopens) a signing session for one party
func (s *signingService) StartSession(ctx context.Context, key contractSvc.SessionKey, organizationID string) (*contractSvc.SessionState, error) {
	c, err := s.load(ctx, key.ContractID, organizationID)
	if err != nil {
		return nil, err
	}
	if action := signingAction(c, key.PartyID); !contractModels.CanPerform(c.Status, action) {
		return nil, fmt.Errorf("%w: cannot sign a %s contract", contractModels.ErrInvalidTransition, c.Status)
	}

	session, err := NewSession(c, key.PartyID, s.caches.ForDevice(key.DeviceID), s.now, s.logger)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[idOf(key)] = session
	state := session.State()
	s.mu.Unlock()

	s.logger.Debug("signing session started",
		"contract_id", key.ContractID,
		"party_id", key.PartyID,
		"required", state.Required,
	)
	return state, nil
}

// withSession runs fn while holding the registry lock
func (s *signingService) withSession(key contractSvc.SessionKey, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[idOf(key)]
	if !ok {
		return &domain.NotFoundError{Message: "signing session not found"}
	}
	return fn(session)
}

// GetSession returns the current session state
func (s *signingService) GetSession(ctx context.Context, key contractSvc.SessionKey) (*contractSvc.SessionState, error) {
	var state *contractSvc.SessionState
	err := s.withSession(key, func(session *Session) error {
		state = session.State()
		return nil
	})
	return state, err
}

// OpenField activates a field for input
func (s *signingService) OpenField(ctx context.Context, key contractSvc.SessionKey, fieldID string) (*contractSvc.OpenFieldResult, error) {
	var result *contractSvc.OpenFieldResult
	err := s.withSession(key, func(session *Session) error {
		var err error
		result, err = session.Open(ctx, fieldID)
		return err
	})
	return result, err
}

// SetField writes a response, dispatching on the field's kind
func (s *signingService) SetField(ctx context.Context, key contractSvc.SessionKey, fieldID string, input *contractSvc.FieldInput) (*contractSvc.SessionState, error) {
	if input == nil {
		return nil, &domain.ValidationError{Message: "field input is required"}
	}
	if len(input.Payload) > config.MaxSignaturePayloadBytes {
		return nil, &domain.ValidationError{Message: "field payload is too large"}
	}

	var state *contractSvc.SessionState
	err := s.withSession(key, func(session *Session) error {
		f, err := session.field(fieldID)
		if err != nil {
			return err
		}
		switch f.Kind {
		case contractModels.FieldSignature, contractModels.FieldInitial:
			err = session.Apply(ctx, fieldID, input.Payload)
		case contractModels.FieldDate:
			err = session.SetDate(fieldID)
		case contractModels.FieldCheckbox:
			if input.Checked == nil {
				return &domain.ValidationError{Message: "checked is required for checkbox fields"}
			}
			err = session.SetCheckbox(fieldID, *input.Checked)
		case contractModels.FieldText:
			err = session.SetText(fieldID, input.Payload)
		default:
			err = fmt.Errorf("%w: unsupported field kind %q", domain.ErrValidation, f.Kind)
		}
		if err != nil {
			return err
		}
		state = session.State()
		return nil
	})
	return state, err
}

// CancelSession discards the in-memory session without writing anything
func (s *signingService) CancelSession(ctx context.Context, key contractSvc.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, idOf(key))
	return nil
}

// FinishSession writes the responses and the resulting transition in one document write
func (s *signingService) FinishSession(ctx context.Context, key contractSvc.SessionKey, actor contractModels.Actor) (*contractModels.Contract, error) {
	var responses map[string]string
	if err := s.withSession(key, func(session *Session) error {
		var err error
		responses, err = session.Finish()
		return err
	}); err != nil {
		return nil, err
	}

	c, err := s.contracts.GetByID(ctx, key.ContractID)
	if err != nil {
		return nil, err
	}
	previous := c.Status

	var effects []effect
	if signingAction(c, key.PartyID) == contractModels.ActionProviderSign {
		if err := s.machine.ProviderSign(c, responses, actor); err != nil {
			return nil, err
		}
	} else {
		completed, err := s.machine.ClientSign(c, key.PartyID, responses, actor)
		if err != nil {
			return nil, err
		}
		if completed {
			effects = append(effects,
				s.markClientHot(c),
				s.notify(c, models.NotificationContractSigned,
					"Contract signed",
					fmt.Sprintf("%q is fully signed", c.Title),
				),
			)
		}
	}

	if err := s.save(ctx, c, effects...); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, idOf(key))
	s.mu.Unlock()

	s.logger.Info("signing session finished",
		"contract_id", c.ID,
		"party_id", key.PartyID,
		"from", previous,
		"to", c.Status,
	)
	return c, nil
}
