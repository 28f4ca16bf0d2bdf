package targets

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

// stubAggregator serves a canned ledger total.
type stubAggregator struct {
	total float64
	err   error
}

func (a *stubAggregator) TotalCO2e(context.Context, domain.CompanyID, string) (float64, error) {
	return a.total, a.err
}

type TargetServiceSuite struct {
	suite.Suite
	store      *InMemoryStore
	aggregator *stubAggregator
	auditStore *auditmemory.InMemoryStore
	service    *Service
	ctx        context.Context
	companyID  domain.CompanyID
}

func TestTargetServiceSuite(t *testing.T) {
	suite.Run(t, new(TargetServiceSuite))
}

func (s *TargetServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.aggregator = &stubAggregator{}
	s.auditStore = auditmemory.NewInMemoryStore()
	s.ctx = context.Background()
	s.companyID = domain.NewCompanyID()

	var err error
	s.service, err = NewService(s.store,
		WithAggregator(s.aggregator),
		WithAudit(auditpublisher.New(s.auditStore)),
	)
	s.Require().NoError(err)
}

func (s *TargetServiceSuite) validInput() CreateTargetInput {
	return CreateTargetInput{
		CompanyID:    s.companyID,
		Description:  "halve scope 1+2 by 2030",
		BaselineYear: 2020,
		BaselineCO2e: 1000,
		TargetYear:   2030,
		TargetCO2e:   500,
		Actor:        "sustainability@example.com",
	}
}

func (s *TargetServiceSuite) TestNewService() {
	_, err := NewService(nil)
	s.Error(err)
}

func (s *TargetServiceSuite) TestCreateTarget() {
	s.Run("persists with defaults", func() {
		target, err := s.service.CreateTarget(s.ctx, s.validInput())
		s.Require().NoError(err)

		s.False(target.ID.IsNil())
		s.Equal(StatusActive, target.Status)
		s.Equal(TypeAbsolute, target.Type)
		s.Equal("all", target.ScopeCoverage)

		stored, err := s.store.FindByID(s.ctx, target.ID)
		s.Require().NoError(err)
		s.Equal(target, stored)
	})

	s.Run("emits an audit event", func() {
		target, err := s.service.CreateTarget(s.ctx, s.validInput())
		s.Require().NoError(err)

		events, err := s.auditStore.ListByCompany(s.ctx, s.companyID)
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(string(audit.EventTargetCreated), last.Action)
		s.Equal(target.ID.String(), last.Subject)
	})

	s.Run("validation", func() {
		tests := []struct {
			name   string
			mutate func(*CreateTargetInput)
		}{
			{name: "missing company", mutate: func(in *CreateTargetInput) { in.CompanyID = domain.CompanyID{} }},
			{name: "missing years", mutate: func(in *CreateTargetInput) { in.BaselineYear = 0 }},
			{name: "target year before baseline", mutate: func(in *CreateTargetInput) { in.TargetYear = 2019 }},
			{name: "negative baseline", mutate: func(in *CreateTargetInput) { in.BaselineCO2e = -1 }},
			{name: "baseline equals target", mutate: func(in *CreateTargetInput) { in.TargetCO2e = in.BaselineCO2e }},
		}

		for _, tt := range tests {
			s.Run(tt.name, func() {
				in := s.validInput()
				tt.mutate(&in)
				_, err := s.service.CreateTarget(s.ctx, in)
				s.Error(err)
				s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			})
		}
	})
}

func (s *TargetServiceSuite) TestGetTargets() {
	first := s.validInput()
	first.TargetYear = 2035
	_, err := s.service.CreateTarget(s.ctx, first)
	s.Require().NoError(err)
	_, err = s.service.CreateTarget(s.ctx, s.validInput())
	s.Require().NoError(err)

	s.Run("orders by target year", func() {
		targets, err := s.service.GetTargets(s.ctx, s.companyID)
		s.Require().NoError(err)
		s.Require().Len(targets, 2)
		s.Equal(2030, targets[0].TargetYear)
		s.Equal(2035, targets[1].TargetYear)
	})

	s.Run("nil company is rejected", func() {
		_, err := s.service.GetTargets(s.ctx, domain.CompanyID{})
		s.Error(err)
	})
}

func (s *TargetServiceSuite) TestProgress() {
	target, err := s.service.CreateTarget(s.ctx, s.validInput())
	s.Require().NoError(err)

	s.Run("computes progress from the ledger total", func() {
		s.aggregator.total = 750

		progress, err := s.service.Progress(s.ctx, target.ID, "2024")
		s.Require().NoError(err)
		s.Equal(750.0, progress.ActualCO2e)
		s.Equal(50.0, progress.Percent)
	})

	s.Run("missing target is not found", func() {
		_, err := s.service.Progress(s.ctx, domain.NewTargetID(), "2024")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("aggregator failure propagates", func() {
		s.aggregator.err = dErrors.New(dErrors.CodeInternal, "ledger unavailable")
		defer func() { s.aggregator.err = nil }()

		_, err := s.service.Progress(s.ctx, target.ID, "2024")
		s.Error(err)
	})

	s.Run("no aggregate source is an internal error", func() {
		service, err := NewService(s.store)
		s.Require().NoError(err)
		_, err = service.Progress(s.ctx, target.ID, "2024")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *TargetServiceSuite) TestUpdateStatus() {
	target, err := s.service.CreateTarget(s.ctx, s.validInput())
	s.Require().NoError(err)

	s.Run("moves the target through its lifecycle", func() {
		s.Require().NoError(s.service.UpdateStatus(s.ctx, target.ID, StatusAchieved))

		stored, err := s.store.FindByID(s.ctx, target.ID)
		s.Require().NoError(err)
		s.Equal(StatusAchieved, stored.Status)
	})

	s.Run("unknown status is rejected", func() {
		err := s.service.UpdateStatus(s.ctx, target.ID, Status("paused"))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing target is not found", func() {
		err := s.service.UpdateStatus(s.ctx, domain.NewTargetID(), StatusMissed)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
