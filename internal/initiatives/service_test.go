package initiatives

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
	audit "carbonledger/pkg/platform/audit"
	auditpublisher "carbonledger/pkg/platform/audit/publisher"
	auditmemory "carbonledger/pkg/platform/audit/store/memory"
)

type InitiativeServiceSuite struct {
	suite.Suite
	store      *InMemoryStore
	auditStore *auditmemory.InMemoryStore
	service    *Service
	ctx        context.Context
	companyID  domain.CompanyID
}

func TestInitiativeServiceSuite(t *testing.T) {
	suite.Run(t, new(InitiativeServiceSuite))
}

func (s *InitiativeServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.ctx = context.Background()
	s.companyID = domain.NewCompanyID()

	var err error
	s.service, err = NewService(s.store, WithAudit(auditpublisher.New(s.auditStore)))
	s.Require().NoError(err)
}

func (s *InitiativeServiceSuite) validInput() RegisterInput {
	return RegisterInput{
		CompanyID:             s.companyID,
		Name:                  "rooftop solar",
		InitiativeType:        "renewable",
		TargetScope:           domain.Scope2,
		Investment:            100000,
		ExpectedReductionCO2e: 200,
		Actor:                 "facilities@example.com",
	}
}

func (s *InitiativeServiceSuite) register() *Initiative {
	initiative, err := s.service.Register(s.ctx, s.validInput())
	s.Require().NoError(err)
	return initiative
}

func (s *InitiativeServiceSuite) TestRegister() {
	s.Run("persists in planned state", func() {
		initiative := s.register()

		s.False(initiative.ID.IsNil())
		s.Equal(StatusPlanned, initiative.Status)
		s.Nil(initiative.EndDate)

		stored, err := s.store.FindByID(s.ctx, initiative.ID)
		s.Require().NoError(err)
		s.Equal(initiative, stored)
	})

	s.Run("emits an audit event", func() {
		initiative := s.register()

		events, err := s.auditStore.ListByCompany(s.ctx, s.companyID)
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(string(audit.EventInitiativeRegistered), last.Action)
		s.Equal(initiative.ID.String(), last.Subject)
	})

	s.Run("validation", func() {
		tests := []struct {
			name   string
			mutate func(*RegisterInput)
		}{
			{name: "missing company", mutate: func(in *RegisterInput) { in.CompanyID = domain.CompanyID{} }},
			{name: "missing name", mutate: func(in *RegisterInput) { in.Name = "" }},
			{name: "invalid scope", mutate: func(in *RegisterInput) { in.TargetScope = domain.Scope(9) }},
			{name: "negative investment", mutate: func(in *RegisterInput) { in.Investment = -1 }},
			{name: "negative expected reduction", mutate: func(in *RegisterInput) { in.ExpectedReductionCO2e = -1 }},
		}

		for _, tt := range tests {
			s.Run(tt.name, func() {
				in := s.validInput()
				tt.mutate(&in)
				_, err := s.service.Register(s.ctx, in)
				s.Error(err)
				s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			})
		}
	})
}

func (s *InitiativeServiceSuite) TestUpdateActualReduction() {
	initiative := s.register()

	s.Run("records the measured saving", func() {
		updated, err := s.service.UpdateActualReduction(s.ctx, initiative.ID, 180)
		s.Require().NoError(err)
		s.Equal(180.0, updated.ActualReductionCO2e)
	})

	s.Run("negative value is rejected", func() {
		_, err := s.service.UpdateActualReduction(s.ctx, initiative.ID, -1)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing initiative is not found", func() {
		_, err := s.service.UpdateActualReduction(s.ctx, domain.NewInitiativeID(), 10)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *InitiativeServiceSuite) TestTransition() {
	s.Run("walks the full lifecycle", func() {
		initiative := s.register()

		ongoing, err := s.service.Transition(s.ctx, initiative.ID, StatusOngoing)
		s.Require().NoError(err)
		s.Equal(StatusOngoing, ongoing.Status)
		s.Nil(ongoing.EndDate)

		completed, err := s.service.Transition(s.ctx, initiative.ID, StatusCompleted)
		s.Require().NoError(err)
		s.Equal(StatusCompleted, completed.Status)
		s.NotNil(completed.EndDate)
	})

	s.Run("illegal transition conflicts", func() {
		initiative := s.register()

		_, err := s.service.Transition(s.ctx, initiative.ID, StatusCompleted)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("terminal state rejects further transitions", func() {
		initiative := s.register()
		_, err := s.service.Transition(s.ctx, initiative.ID, StatusCancelled)
		s.Require().NoError(err)

		_, err = s.service.Transition(s.ctx, initiative.ID, StatusOngoing)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown status is rejected", func() {
		initiative := s.register()
		_, err := s.service.Transition(s.ctx, initiative.ID, Status("paused"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *InitiativeServiceSuite) TestPayback() {
	initiative := s.register()

	s.Run("computes simple payback", func() {
		years, err := s.service.Payback(s.ctx, initiative.ID, 100)
		s.Require().NoError(err)
		s.Equal(5.0, years)
	})

	s.Run("missing initiative is not found", func() {
		_, err := s.service.Payback(s.ctx, domain.NewInitiativeID(), 100)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *InitiativeServiceSuite) TestList() {
	s.register()
	s.register()

	initiatives, err := s.service.List(s.ctx, s.companyID)
	s.Require().NoError(err)
	s.Len(initiatives, 2)

	_, err = s.service.List(s.ctx, domain.CompanyID{})
	s.Error(err)
}
