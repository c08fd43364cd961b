package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"muster/internal/checkin/models"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestAttendance_ReturnsCheckedInRecord() {
	ctx, volunteerID := s.authedCtx()
	eventID := id.EventID(uuid.New())
	record := models.NewCheckedInRecord(eventID, volunteerID, venue, testTime)

	s.mockCache.EXPECT().Get(gomock.Any(), eventID, volunteerID).Return(nil, sentinel.ErrNotFound)
	s.mockAttendance.EXPECT().FindCheckedIn(gomock.Any(), eventID, volunteerID).Return(record, nil)
	s.mockCache.EXPECT().Put(gomock.Any(), record).Return(nil)

	got, err := s.service.Attendance(ctx, eventID)

	s.Require().NoError(err)
	s.Equal(record.ID, got.ID)
}

func (s *ServiceSuite) TestAttendance_NotCheckedIn() {
	ctx, volunteerID := s.authedCtx()
	eventID := id.EventID(uuid.New())

	s.mockCache.EXPECT().Get(gomock.Any(), eventID, volunteerID).Return(nil, sentinel.ErrNotFound)
	s.mockAttendance.EXPECT().FindCheckedIn(gomock.Any(), eventID, volunteerID).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Attendance(ctx, eventID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestAttendance_RequiresAuthentication() {
	_, err := s.service.Attendance(context.Background(), id.EventID(uuid.New()))

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
