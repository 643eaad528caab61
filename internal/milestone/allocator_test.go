package milestone_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

func TestAllocator_FromTemplate(t *testing.T) {
	firmID := uuid.New()
	templateID := uuid.New()
	projectID := uuid.New()

	tests := []struct {
		name      string
		total     string
		setupMock func(src *milestone.MockTemplateSource, ins *milestone.MockInserter)
		wantLen   int
		wantErr   error
	}{
		{
			name:  "Success",
			total: "250000",
			setupMock: func(src *milestone.MockTemplateSource, ins *milestone.MockInserter) {
				src.EXPECT().TemplateSplit(gomock.Any(), firmID, templateID).Return([]milestone.Spec{
					{Title: "Advance", Percentage: decimal.NewFromInt(40), OrderIndex: 1},
					{Title: "Execution", Percentage: decimal.NewFromInt(40), OrderIndex: 2},
					{Title: "Handover", Percentage: decimal.NewFromInt(20), OrderIndex: 3},
				}, nil)
				ins.EXPECT().InsertMilestones(gomock.Any(), gomock.Len(3)).
					DoAndReturn(func(_ context.Context, ms []*milestone.Milestone) error {
						for _, m := range ms {
							m.ID = uuid.New()
						}

						return nil
					})
			},
			wantLen: 3,
		},
		{
			name:  "EmptyTemplate",
			total: "1000",
			setupMock: func(src *milestone.MockTemplateSource, _ *milestone.MockInserter) {
				src.EXPECT().TemplateSplit(gomock.Any(), firmID, templateID).Return(nil, nil)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:  "UnknownTemplate",
			total: "1000",
			setupMock: func(src *milestone.MockTemplateSource, _ *milestone.MockInserter) {
				src.EXPECT().TemplateSplit(gomock.Any(), firmID, templateID).Return(nil, apperr.ErrNotFound)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:  "InsertFails",
			total: "1000",
			setupMock: func(src *milestone.MockTemplateSource, ins *milestone.MockInserter) {
				src.EXPECT().TemplateSplit(gomock.Any(), firmID, templateID).Return([]milestone.Spec{
					{Title: "All", Percentage: decimal.NewFromInt(100), OrderIndex: 1},
				}, nil)
				ins.EXPECT().InsertMilestones(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantErr: apperr.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			src := milestone.NewMockTemplateSource(ctrl)
			ins := milestone.NewMockInserter(ctrl)
			tt.setupMock(src, ins)

			got, err := milestone.NewAllocator(src).FromTemplate(context.Background(), ins, firmID, templateID, projectID, decimal.RequireFromString(tt.total))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)

			allocated := decimal.Zero
			for _, m := range got {
				allocated = allocated.Add(m.Amount)
				assert.NotEqual(t, uuid.Nil, m.ID)
			}

			assert.True(t, decimal.RequireFromString(tt.total).Equal(allocated))
		})
	}
}

func TestAllocator_Custom(t *testing.T) {
	projectID := uuid.New()

	tests := []struct {
		name       string
		total      string
		specs      []milestone.Spec
		wantInsert bool
		wantErr    error
	}{
		{
			name:  "Valid",
			total: "999.99",
			specs: []milestone.Spec{
				{Title: "One", Percentage: decimal.RequireFromString("33.33"), OrderIndex: 10},
				{Title: "Two", Percentage: decimal.RequireFromString("33.33"), OrderIndex: 20},
				{Title: "Three", Percentage: decimal.RequireFromString("33.34"), OrderIndex: 30},
			},
			wantInsert: true,
		},
		{
			name:  "SumOff",
			total: "1000",
			specs: []milestone.Spec{
				{Title: "One", Percentage: decimal.NewFromInt(50), OrderIndex: 1},
				{Title: "Two", Percentage: decimal.RequireFromString("49.98"), OrderIndex: 2},
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name:  "BadTotal",
			total: "0",
			specs: []milestone.Spec{
				{Title: "One", Percentage: decimal.NewFromInt(100), OrderIndex: 1},
			},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ins := milestone.NewMockInserter(ctrl)
			if tt.wantInsert {
				ins.EXPECT().InsertMilestones(gomock.Any(), gomock.Len(len(tt.specs))).Return(nil)
			}

			got, err := milestone.NewAllocator(nil).Custom(context.Background(), ins, projectID, decimal.RequireFromString(tt.total), tt.specs)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			for i, m := range got {
				assert.Equal(t, i+1, m.OrderIndex)
			}
		})
	}
}
