package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"studioflow/internal/config"
	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	contractModels "studioflow/internal/domain/models/contract"
	"studioflow/internal/domain/repositories"
	contractRepo "studioflow/internal/domain/repositories/contract"
	contractSvc "studioflow/internal/domain/services/contract"
)

// contractService implements the ContractService interface
type contractService struct {
	*store
	machine *Machine
}

// Dependencies bundles the collaborators shared by the contract services
type Dependencies struct {
	Contracts     contractRepo.ContractRepository
	Clients       repositories.ClientRepository
	Notifications repositories.NotificationRepository
	Work          repositories.UnitOfWork
	Logger        *slog.Logger
	// Now overrides the clock; nil uses time.Now
	Now func() time.Time
}

func newStore(deps Dependencies) *store {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &store{
		contracts:     deps.Contracts,
		clients:       deps.Clients,
		notifications: deps.Notifications,
		work:          deps.Work,
		now:           now,
		logger:        logger,
	}
}

// NewContractService creates a new contract service
func NewContractService(deps Dependencies) contractSvc.ContractService {
	st := newStore(deps)
	return &contractService{
		store:   st,
		machine: NewMachine(st.now),
	}
}

// CreateContract creates a draft contract with its first version snapshot
func (s *contractService) CreateContract(ctx context.Context, req *contractSvc.CreateContractRequest, actor contractModels.Actor) (*contractModels.Contract, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !actor.IsProvider() {
		return nil, contractModels.ErrProviderOnly
	}

	if req.ClientID != "" && s.clients != nil {
		if _, err := s.clients.Get(ctx, req.ClientID, req.OrganizationID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	parties := make([]contractModels.Party, len(req.Parties))
	for i, p := range req.Parties {
		parties[i] = contractModels.Party{
			ID:    uuid.NewString(),
			Role:  p.Role,
			Name:  strings.TrimSpace(p.Name),
			Email: strings.TrimSpace(p.Email),
		}
	}

	c := &contractModels.Contract{
		ID:               uuid.NewString(),
		OrganizationID:   req.OrganizationID,
		ClientID:         req.ClientID,
		Title:            strings.TrimSpace(req.Title),
		Body:             req.Body,
		Status:           contractModels.StatusDraft,
		Version:          1,
		Parties:          parties,
		Variables:        req.Variables.Clone(),
		SignatureFields:  []contractModels.SignatureField{},
		FieldValues:      map[string]string{},
		History:          []contractModels.ContractVersion{},
		RevisionRequests: []contractModels.RevisionRequest{},
		ExpiresAt:        req.ExpiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	c.AppendHistory(c.Snapshot(modifiedBy(actor), ChangedFields(nil, c.Variables), now))
	c.AppendAudit(contractModels.NewAuditEvent(contractModels.EventCreated, actor, now, nil))

	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract created",
		"id", c.ID,
		"organization_id", c.OrganizationID,
		"parties", len(c.Parties),
	)
	return c, nil
}

// GetContract retrieves a contract
func (s *contractService) GetContract(ctx context.Context, id, organizationID string) (*contractModels.Contract, error) {
	return s.contracts.Get(ctx, id, organizationID)
}

// ListContracts retrieves every contract of an organization
func (s *contractService) ListContracts(ctx context.Context, organizationID string) ([]contractModels.Contract, error) {
	return s.contracts.List(ctx, organizationID)
}

// RenderContract renders the body against the contract's variables
func (s *contractService) RenderContract(ctx context.Context, id, organizationID string) (*contractSvc.RenderedContract, error) {
	c, err := s.contracts.Get(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	return render(c), nil
}

func render(c *contractModels.Contract) *contractSvc.RenderedContract {
	body := Render(c.Body, c.Variables)
	return &contractSvc.RenderedContract{
		Contract:     c,
		RenderedBody: body,
		Markers:      ExtractMarkers(body, c.Parties),
		FieldValues:  c.RenderableValues(),
	}
}

// UpdateVariables replaces the variables of an editable contract
func (s *contractService) UpdateVariables(ctx context.Context, id, organizationID string, req *contractSvc.UpdateVariablesRequest, actor contractModels.Actor) (*contractModels.Contract, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Variables, validation.NotNil),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	c, err := s.contracts.Get(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	changed, err := s.machine.UpdateVariables(c, req.Variables, actor)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return c, nil
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract variables updated", "id", c.ID, "changed", changed)
	return c, nil
}

// PrepareFields places fields from the rendered layout, replacing any previous placement
func (s *contractService) PrepareFields(ctx context.Context, id, organizationID string, req *contractSvc.PrepareRequest, actor contractModels.Actor) (*contractModels.Contract, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.LineHeight, validation.Required, validation.Min(0.0).Exclusive()),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	c, err := s.contracts.Get(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	fields, err := PlaceFields(req)
	if err != nil {
		return nil, err
	}
	if err := s.machine.ReplaceFields(c, fields, actor); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract fields placed", "id", c.ID, "fields", len(fields), "markers", len(req.Markers))
	return c, nil
}

// transition loads a contract, applies fn and writes the result
func (s *contractService) transition(ctx context.Context, id, organizationID string, fn func(c *contractModels.Contract) ([]effect, error)) (*contractModels.Contract, error) {
	c, err := s.load(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	previous := c.Status
	effects, err := fn(c)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, c, effects...); err != nil {
		return nil, err
	}

	s.logger.Info("contract status changed",
		"id", c.ID,
		"from", previous,
		"to", c.Status,
	)
	return c, nil
}

// Archive retires a contract
func (s *contractService) Archive(ctx context.Context, id, organizationID string, actor contractModels.Actor) (*contractModels.Contract, error) {
	return s.transition(ctx, id, organizationID, func(c *contractModels.Contract) ([]effect, error) {
		return nil, s.machine.Archive(c, actor)
	})
}

// Unarchive restores an archived contract to the requested status
func (s *contractService) Unarchive(ctx context.Context, id, organizationID string, req *contractSvc.UnarchiveRequest, actor contractModels.Actor) (*contractModels.Contract, error) {
	var target contractModels.Status
	if req != nil {
		target = req.TargetStatus
	}
	return s.transition(ctx, id, organizationID, func(c *contractModels.Contract) ([]effect, error) {
		return nil, s.machine.Unarchive(c, target, actor)
	})
}

// Expire closes a contract that is still waiting on signers
func (s *contractService) Expire(ctx context.Context, id, organizationID string, actor contractModels.Actor) (*contractModels.Contract, error) {
	return s.transition(ctx, id, organizationID, func(c *contractModels.Contract) ([]effect, error) {
		return nil, s.machine.Expire(c, actor)
	})
}

// Duplicate derives a fresh draft from an existing contract
func (s *contractService) Duplicate(ctx context.Context, id, organizationID string, actor contractModels.Actor) (*contractModels.Contract, error) {
	source, err := s.contracts.Get(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	dup, err := s.machine.Duplicate(source, actor)
	if err != nil {
		return nil, err
	}
	if err := s.contracts.Create(ctx, dup); err != nil {
		return nil, err
	}

	s.logger.Info("contract duplicated", "source_id", source.ID, "id", dup.ID)
	return dup, nil
}

// OpenForSigner renders the contract for a signer party, marking it viewed on first open
func (s *contractService) OpenForSigner(ctx context.Context, contractID, partyID string, actor contractModels.Actor) (*contractSvc.RenderedContract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if _, ok := c.Party(partyID); !ok {
		return nil, fmt.Errorf("%w: %s", contractModels.ErrPartyNotFound, partyID)
	}

	if s.machine.MarkViewed(c, partyID, actor) {
		if err := s.save(ctx, c); err != nil {
			// Viewing must not fail because the receipt could not be written
			if !errors.Is(err, domain.ErrConflict) {
				return nil, err
			}
			s.logger.Warn("viewed receipt lost to concurrent write", "id", c.ID)
			if c, err = s.contracts.GetByID(ctx, contractID); err != nil {
				return nil, err
			}
		}
	}
	return render(c), nil
}

// RequestChanges records a signer's revision request and notifies the provider
func (s *contractService) RequestChanges(ctx context.Context, contractID, partyID string, req *contractSvc.RequestChangesRequest, actor contractModels.Actor) (*contractModels.Contract, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Message,
			validation.Required,
			validation.Length(1, config.MaxRevisionMessageLength),
			validation.By(notBlank),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.transition(ctx, contractID, "", func(c *contractModels.Contract) ([]effect, error) {
		if err := s.machine.RequestChanges(c, partyID, req.Message, actor); err != nil {
			return nil, err
		}
		return []effect{s.notify(c,
			models.NotificationRevisionRequested,
			"Changes requested",
			fmt.Sprintf("%s requested changes to %q: %s", partyName(c, partyID), c.Title, strings.TrimSpace(req.Message)),
		)}, nil
	})
}

// Decline records a signer's refusal and notifies the provider
func (s *contractService) Decline(ctx context.Context, contractID, partyID string, req *contractSvc.DeclineRequest, actor contractModels.Actor) (*contractModels.Contract, error) {
	reason := ""
	if req != nil {
		reason = req.Reason
	}
	return s.transition(ctx, contractID, "", func(c *contractModels.Contract) ([]effect, error) {
		if err := s.machine.Decline(c, partyID, reason, actor); err != nil {
			return nil, err
		}
		return []effect{s.notify(c,
			models.NotificationContractDeclined,
			"Contract declined",
			fmt.Sprintf("%s declined %q", partyName(c, partyID), c.Title),
		)}, nil
	})
}

// Subscribe streams contract changes for an organization
func (s *contractService) Subscribe(ctx context.Context, organizationID string, onChange contractRepo.ChangeFunc, onError contractRepo.ErrorFunc) (func(), error) {
	return s.contracts.Subscribe(ctx, organizationID, onChange, onError)
}

// validateCreateRequest validates a create contract request
func (s *contractService) validateCreateRequest(req *contractSvc.CreateContractRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxContractTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Body, validation.Required),
		validation.Field(&req.Parties,
			validation.Required,
			validation.Length(1, config.MaxPartiesPerContract),
			validation.By(exactlyOneProvider),
		),
	)
}

func validateParty(value interface{}) error {
	p, ok := value.(contractSvc.PartyInput)
	if !ok {
		return errors.New("invalid party")
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.Role, validation.Required, validation.By(func(v interface{}) error {
			if role, _ := v.(contractModels.PartyRole); !role.IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}
			return nil
		})),
		validation.Field(&p.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
	)
}

func exactlyOneProvider(value interface{}) error {
	parties, ok := value.([]contractSvc.PartyInput)
	if !ok {
		return errors.New("parties must be a list")
	}
	providers := 0
	for i, p := range parties {
		if err := validateParty(p); err != nil {
			return fmt.Errorf("party %d: %v", i, err)
		}
		if p.Role == contractModels.RoleProvider {
			providers++
		}
	}
	if providers != 1 {
		return fmt.Errorf("exactly one provider party is required, got %d", providers)
	}
	return nil
}

func notBlank(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}
