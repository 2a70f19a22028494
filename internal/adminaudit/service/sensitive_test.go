package service

import (
	"context"
	"strings"

	"go.uber.org/mock/gomock"

	"vigil/internal/adminaudit/models"
)

func (s *ServiceSuite) TestSensitiveAccessDetailsContainEntityID() {
	cases := []struct {
		name       string
		log        func(ctx context.Context, p SensitiveAccessParams) (*models.AuditLog, error)
		wantAction string
		wantEntity string
	}{
		{"customer profile", s.service.LogCustomerProfileAccess, models.ActionViewCustomerProfile, models.EntityCustomerProfile},
		{"payout details", s.service.LogPayoutDetailsAccess, models.ActionViewPayoutDetails, models.EntityPayoutDetails},
		{"kyc document", s.service.LogKYCDocumentAccess, models.ActionViewKYCDocument, models.EntityKYCDocument},
		{"store details", s.service.LogStoreDetailsAccess, models.ActionViewStoreDetails, models.EntityStoreDetails},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockStore.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(echoAdd())

			got, err := tc.log(context.Background(), SensitiveAccessParams{
				AdminUserID: "admin-7",
				EntityID:    "resource-8f3a",
				Success:     true,
			})
			s.Require().NoError(err)
			s.Equal(tc.wantAction, got.Action)
			s.Equal(tc.wantEntity, got.EntityType)
			s.Equal("resource-8f3a", got.EntityID)
			s.True(strings.Contains(got.Details, "resource-8f3a"),
				"details %q must contain the entity id verbatim", got.Details)
		})
	}
}

func (s *ServiceSuite) TestSensitiveAccessEachCallProducesNewRecord() {
	seen := make(map[string]bool)
	s.mockStore.EXPECT().Add(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(echoAdd())

	for i := 0; i < 2; i++ {
		got, err := s.service.LogKYCDocumentAccess(context.Background(), SensitiveAccessParams{
			AdminUserID: "admin-7",
			EntityID:    "kyc-42",
			Success:     true,
		})
		s.Require().NoError(err)
		s.False(seen[got.ID.String()], "each call must mint a fresh identifier")
		seen[got.ID.String()] = true
		s.Contains(got.Details, "kyc-42")
	}
}

func (s *ServiceSuite) TestSensitiveAccessFailurePropagates() {
	s.mockStore.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil, assertErr{})

	_, err := s.service.LogPayoutDetailsAccess(context.Background(), SensitiveAccessParams{
		AdminUserID: "admin-7",
		EntityID:    "payout-9",
		Success:     false,
		Reason:      "permission denied",
	})
	s.Require().Error(err)
}

type assertErr struct{}

func (assertErr) Error() string { return "insert rejected" }
