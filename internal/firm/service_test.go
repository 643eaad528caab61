package firm_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/firm"
)

func TestService_Ensure(t *testing.T) {
	userID := uuid.New()
	firmID := uuid.New()

	type testCase struct {
		name        string
		params      firm.EnsureParams
		setupMock   func(m *firm.MockRepository)
		wantCreated bool
		wantErr     error
	}

	valid := firm.EnsureParams{UserID: userID, Email: " Studio@Example.com ", FullName: "Ana", FirmName: "Studio Ana"}

	tests := []testCase{
		{
			name:   "CreatesFirm",
			params: valid,
			setupMock: func(m *firm.MockRepository) {
				m.EXPECT().EnsureOwner(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f *firm.Firm, u *firm.User) (bool, error) {
						assert.Equal(t, "Studio Ana", f.Name)
						assert.Equal(t, "studio@example.com", u.Email)
						assert.Equal(t, "Ana", *u.FullName)

						f.ID = firmID
						f.CreatedAt = time.Now()
						u.FirmID = firmID

						return true, nil
					})
			},
			wantCreated: true,
		},
		{
			name:   "AlreadyProvisioned",
			params: valid,
			setupMock: func(m *firm.MockRepository) {
				m.EXPECT().EnsureOwner(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f *firm.Firm, _ *firm.User) (bool, error) {
						f.ID = firmID
						f.Name = "Existing"

						return false, nil
					})
			},
		},
		{
			name:    "InvalidInput",
			params:  firm.EnsureParams{Email: "nope"},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := firm.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			f, created, err := firm.NewService(repo, zap.NewNop()).Ensure(context.Background(), tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				var verr *apperr.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Len(t, verr.Fields, 3)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, firmID, f.ID)
		})
	}
}

func TestService_Principal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	firmID := uuid.New()

	repo := firm.NewMockRepository(ctrl)
	repo.EXPECT().GetUser(gomock.Any(), userID).Return(&firm.User{ID: userID, FirmID: firmID}, nil)
	repo.EXPECT().GetUser(gomock.Any(), gomock.Not(userID)).Return(nil, apperr.ErrNotFound)

	svc := firm.NewService(repo, zap.NewNop())

	p, err := svc.Principal(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, firmID, p.FirmID)

	_, err = svc.Principal(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
