package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carbonledger/internal/calculator"
	"carbonledger/internal/factors"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
	audit "carbonledger/pkg/platform/audit"
	auditpublisher "carbonledger/pkg/platform/audit/publisher"
	auditmemory "carbonledger/pkg/platform/audit/store/memory"
)

// =============================================================================
// Ledger Service Test Suite
// =============================================================================

type LedgerServiceSuite struct {
	suite.Suite
	store      *InMemoryStore
	auditStore *auditmemory.InMemoryStore
	service    *Service
	ctx        context.Context
	companyID  domain.CompanyID
	clock      time.Time
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.ctx = context.Background()
	s.companyID = domain.NewCompanyID()
	s.clock = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	calc, err := calculator.New(factors.NewTable())
	s.Require().NoError(err)

	s.service, err = NewService(s.store, calc,
		WithAudit(auditpublisher.New(s.auditStore)),
		withClock(func() time.Time { return s.clock }),
	)
	s.Require().NoError(err)
}

func (s *LedgerServiceSuite) dieselInput() AddEmissionInput {
	return AddEmissionInput{
		CompanyID:    s.companyID,
		Period:       "2024",
		Scope:        domain.Scope1,
		Category:     domain.CategoryStationary,
		ActivityType: "diesel",
		Quantity:     1000,
		Actor:        "reporter@example.com",
	}
}

func (s *LedgerServiceSuite) auditEvents() []audit.Event {
	events, err := s.auditStore.ListByCompany(s.ctx, s.companyID)
	s.Require().NoError(err)
	return events
}

func (s *LedgerServiceSuite) TestNewService() {
	s.Run("nil store returns error", func() {
		calc, err := calculator.New(factors.NewTable())
		s.Require().NoError(err)
		_, err = NewService(nil, calc)
		s.Error(err)
	})

	s.Run("nil calculator returns error", func() {
		_, err := NewService(s.store, nil)
		s.Error(err)
	})
}

func (s *LedgerServiceSuite) TestAddEmission() {
	s.Run("computes co2e and stamps factor provenance", func() {
		record, err := s.service.AddEmission(s.ctx, s.dieselInput())
		s.Require().NoError(err)

		s.Equal(2.815, record.CO2e)
		s.InDelta(2.68, record.CO2, 1e-9)
		s.Equal("scope1/stationary/diesel", record.FactorID)
		s.Equal(factors.CatalogueVersion, record.FactorVersion)
		s.Equal("litre", record.Unit)
		s.Equal("GHG Protocol", record.Source)
		s.Equal(domain.DataQualityMeasured, record.DataQuality)
		s.Equal(s.clock, record.CreatedAt)

		stored, err := s.store.FindByID(s.ctx, record.ID)
		s.Require().NoError(err)
		s.Equal(record, stored)
	})

	s.Run("explicit co2e skips calculation", func() {
		in := s.dieselInput()
		co2e := 12.3456
		in.CO2e = &co2e
		in.Unit = "litre"

		record, err := s.service.AddEmission(s.ctx, in)
		s.Require().NoError(err)

		s.Equal(12.346, record.CO2e)
		s.Zero(record.CO2)
		s.Empty(record.FactorID)
	})

	s.Run("scope 3 records carry the category number", func() {
		record, err := s.service.AddEmission(s.ctx, AddEmissionInput{
			CompanyID:    s.companyID,
			Period:       "2024",
			Scope:        domain.Scope3,
			Category:     domain.CategoryBusinessTravel,
			ActivityType: "flight_long",
			Quantity:     10000,
		})
		s.Require().NoError(err)

		s.Equal("6", record.Subcategory)
		s.Equal(1.52, record.CO2e)
	})

	s.Run("scope 3 spend routes to the spend-based method", func() {
		record, err := s.service.AddEmission(s.ctx, AddEmissionInput{
			CompanyID: s.companyID,
			Period:    "2024",
			Scope:     domain.Scope3,
			Category:  domain.CategoryBusinessTravel,
			Spend:     50000,
		})
		s.Require().NoError(err)
		s.Equal(10.0, record.CO2e)
	})

	s.Run("emits an audit event", func() {
		record, err := s.service.AddEmission(s.ctx, s.dieselInput())
		s.Require().NoError(err)

		events := s.auditEvents()
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(string(audit.EventEmissionRecorded), last.Action)
		s.Equal(record.ID.String(), last.Subject)
		s.Equal("reporter@example.com", last.Actor)
	})
}

func (s *LedgerServiceSuite) TestAddEmissionValidation() {
	tests := []struct {
		name   string
		mutate func(*AddEmissionInput)
	}{
		{name: "missing company", mutate: func(in *AddEmissionInput) { in.CompanyID = domain.CompanyID{} }},
		{name: "missing period", mutate: func(in *AddEmissionInput) { in.Period = "" }},
		{name: "invalid scope", mutate: func(in *AddEmissionInput) { in.Scope = domain.Scope(7) }},
		{name: "category outside scope", mutate: func(in *AddEmissionInput) { in.Category = domain.CategoryElectricity }},
		{name: "negative quantity", mutate: func(in *AddEmissionInput) { in.Quantity = -1 }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := s.dieselInput()
			tt.mutate(&in)
			_, err := s.service.AddEmission(s.ctx, in)
			s.Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *LedgerServiceSuite) TestBulkImport() {
	s.Run("imports all entries", func() {
		in := s.dieselInput()
		second := s.dieselInput()
		second.ActivityType = "natural_gas"

		records, err := s.service.BulkImport(s.ctx, s.companyID, []AddEmissionInput{in, second})
		s.Require().NoError(err)
		s.Len(records, 2)

		stored, err := s.store.List(s.ctx, s.companyID, Query{})
		s.Require().NoError(err)
		s.Len(stored, 2)

		events := s.auditEvents()
		s.Require().NotEmpty(events)
		s.Equal(string(audit.EventEmissionsImported), events[len(events)-1].Action)
	})

	s.Run("one bad entry fails the whole batch", func() {
		store := NewInMemoryStore()
		calc, err := calculator.New(factors.NewTable())
		s.Require().NoError(err)
		service, err := NewService(store, calc)
		s.Require().NoError(err)

		bad := s.dieselInput()
		bad.ActivityType = "whale_oil"

		_, err = service.BulkImport(s.ctx, s.companyID, []AddEmissionInput{s.dieselInput(), bad})
		s.Error(err)

		stored, err := store.List(s.ctx, s.companyID, Query{})
		s.Require().NoError(err)
		s.Empty(stored)
	})

	s.Run("entry for another company is rejected", func() {
		in := s.dieselInput()
		in.CompanyID = domain.NewCompanyID()
		_, err := s.service.BulkImport(s.ctx, s.companyID, []AddEmissionInput{in})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("empty batch is a no-op", func() {
		records, err := s.service.BulkImport(s.ctx, s.companyID, nil)
		s.NoError(err)
		s.Nil(records)
	})
}

func (s *LedgerServiceSuite) TestUpdateEmissionRecord() {
	record, err := s.service.AddEmission(s.ctx, s.dieselInput())
	s.Require().NoError(err)

	s.Run("applies only the supplied fields", func() {
		verified := true
		verifiedBy := "auditor@example.com"
		updated, err := s.service.UpdateEmissionRecord(s.ctx, record.ID, UpdateEmission{
			Verified:   &verified,
			VerifiedBy: &verifiedBy,
			Actor:      "auditor@example.com",
			Reason:     "annual verification",
		})
		s.Require().NoError(err)

		s.True(updated.Verified)
		s.Equal(record.CO2e, updated.CO2e)
		s.Equal(record.Quantity, updated.Quantity)

		events := s.auditEvents()
		last := events[len(events)-1]
		s.Equal(string(audit.EventEmissionCorrected), last.Action)
		s.Equal("annual verification", last.Reason)
	})

	s.Run("corrected co2e is rounded", func() {
		co2e := 3.14159
		updated, err := s.service.UpdateEmissionRecord(s.ctx, record.ID, UpdateEmission{CO2e: &co2e})
		s.Require().NoError(err)
		s.Equal(3.142, updated.CO2e)
	})

	s.Run("negative quantity is rejected", func() {
		quantity := -5.0
		_, err := s.service.UpdateEmissionRecord(s.ctx, record.ID, UpdateEmission{Quantity: &quantity})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing record is not found", func() {
		_, err := s.service.UpdateEmissionRecord(s.ctx, domain.NewRecordID(), UpdateEmission{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *LedgerServiceSuite) TestDeleteEmissionRecord() {
	record, err := s.service.AddEmission(s.ctx, s.dieselInput())
	s.Require().NoError(err)

	s.Run("removes the record and audits the reason", func() {
		err := s.service.DeleteEmissionRecord(s.ctx, record.ID, "admin@example.com", "duplicate entry")
		s.Require().NoError(err)

		_, err = s.store.FindByID(s.ctx, record.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		events := s.auditEvents()
		last := events[len(events)-1]
		s.Equal(string(audit.EventEmissionDeleted), last.Action)
		s.Equal("duplicate entry", last.Reason)
	})

	s.Run("missing record is not found", func() {
		err := s.service.DeleteEmissionRecord(s.ctx, domain.NewRecordID(), "admin@example.com", "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *LedgerServiceSuite) TestGetEmissions() {
	s.Run("nil company is rejected", func() {
		_, err := s.service.GetEmissions(s.ctx, domain.CompanyID{}, Query{})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("returns the company ledger", func() {
		_, err := s.service.AddEmission(s.ctx, s.dieselInput())
		s.Require().NoError(err)

		records, err := s.service.GetEmissions(s.ctx, s.companyID, Query{})
		s.Require().NoError(err)
		s.Len(records, 1)
	})
}
