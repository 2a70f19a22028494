package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	dErrors "vigil/pkg/domain-errors"

	"vigil/internal/adminaudit/models"
)

// echoAdd makes the mock store return exactly what the service built, so
// assertions see the record as persisted.
func echoAdd() func(ctx context.Context, log models.AuditLog) (*models.AuditLog, error) {
	return func(_ context.Context, log models.AuditLog) (*models.AuditLog, error) {
		return &log, nil
	}
}

func (s *ServiceSuite) TestLogActionAssignsIdentityAndTimestamp() {
	s.mockStore.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(echoAdd())

	got, err := s.service.LogAction(context.Background(), LogActionParams{
		AdminUserID: "admin-7",
		Action:      "SuspendListing",
		EntityType:  "Listing",
		EntityID:    "listing-123",
		Success:     true,
		IPAddress:   "10.1.2.3",
	})
	s.Require().NoError(err)
	s.NotEqual("00000000-0000-0000-0000-000000000000", got.ID.String())
	s.True(got.CreatedAt.Equal(fixedNow))
	s.Equal("admin-7", got.AdminUserID)
	s.Equal("10.1.2.3", got.IPAddress, "admin trail keeps the raw address")
}

func (s *ServiceSuite) TestLogActionForcesFailureReasonEmptyOnSuccess() {
	s.mockStore.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(echoAdd())

	got, err := s.service.LogAction(context.Background(), LogActionParams{
		AdminUserID:   "admin-7",
		Action:        "SuspendListing",
		Success:       true,
		FailureReason: "should be discarded",
	})
	s.Require().NoError(err)
	s.Empty(got.FailureReason)
}

func (s *ServiceSuite) TestLogActionPreservesFailureReasonOnFailure() {
	s.mockStore.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(echoAdd())

	got, err := s.service.LogAction(context.Background(), LogActionParams{
		AdminUserID:   "admin-7",
		Action:        "SuspendListing",
		Success:       false,
		FailureReason: "listing already suspended",
	})
	s.Require().NoError(err)
	s.Equal("listing already suspended", got.FailureReason)
}

func (s *ServiceSuite) TestLogActionPropagatesWriteFailure() {
	s.mockStore.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil, errors.New("insert rejected"))

	_, err := s.service.LogAction(context.Background(), LogActionParams{
		AdminUserID: "admin-7",
		Action:      "SuspendListing",
		Success:     true,
	})
	s.Require().Error(err, "compliance writes must fail loudly")
	s.True(dErrors.HasCode(err, dErrors.CodeAuditWriteFailed))
}

func (s *ServiceSuite) TestLogActionValidatesInput() {
	_, err := s.service.LogAction(context.Background(), LogActionParams{Action: "SuspendListing"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.LogAction(context.Background(), LogActionParams{AdminUserID: "admin-7"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestQueryForwardsFilterWithDefaultCap() {
	s.mockStore.EXPECT().
		GetFiltered(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.Filter) ([]models.AuditLog, error) {
			s.Equal(100, filter.Limit())
			s.Nil(filter.AdminUserID)
			return nil, nil
		})

	_, err := s.service.Query(context.Background(), models.Filter{})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestQueryPropagatesReadFailure() {
	s.mockStore.EXPECT().GetFiltered(gomock.Any(), gomock.Any()).Return(nil, errors.New("store down"))

	_, err := s.service.Query(context.Background(), models.Filter{})
	s.Require().Error(err)
}

func (s *ServiceSuite) TestGetByResourceRequiresIdentity() {
	_, err := s.service.GetByResource(context.Background(), "", "listing-123")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.GetByResource(context.Background(), "Listing", "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestPurgeOldLogsComputesCutoffBeforeNow() {
	s.mockStore.EXPECT().
		DeleteOlderThan(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cutoff time.Time) (int, error) {
			s.True(cutoff.Before(fixedNow), "cutoff must be strictly before now")
			s.True(cutoff.Equal(fixedNow.AddDate(0, 0, -90)))
			return 17, nil
		})

	deleted, err := s.service.PurgeOldLogs(context.Background(), 90)
	s.Require().NoError(err)
	s.Equal(17, deleted, "count comes straight from the store")
}

func (s *ServiceSuite) TestPurgeOldLogsRejectsNonPositiveRetention() {
	_, err := s.service.PurgeOldLogs(context.Background(), 0)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestGetLogsForArchivalForwardsBatchSize() {
	s.mockStore.EXPECT().
		GetForArchival(gomock.Any(), gomock.Any(), 500).
		DoAndReturn(func(_ context.Context, cutoff time.Time, _ int) ([]models.AuditLog, error) {
			s.True(cutoff.Before(fixedNow))
			return []models.AuditLog{{Action: "old"}}, nil
		})

	logs, err := s.service.GetLogsForArchival(context.Background(), 90, 500)
	s.Require().NoError(err)
	s.Len(logs, 1)
}
