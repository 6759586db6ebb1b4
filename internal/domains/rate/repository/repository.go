package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"otabridge/infras/otel"
	"otabridge/infras/postgres"
	"otabridge/internal/domains/rate/model"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	gRepo "otabridge/shared/repository"
)

var (
	conflictColumns = []string{model.FieldHotelCode, model.FieldRoomTypeCode, model.FieldRatePlanCode}
	updateColumns   = []string{
		model.FieldHotelName,
		model.FieldStartDate,
		model.FieldEndDate,
		model.FieldMon,
		model.FieldTue,
		model.FieldWed,
		model.FieldThu,
		model.FieldFri,
		model.FieldSat,
		model.FieldSun,
		model.FieldCurrencyCode,
		model.FieldBaseGuestAmounts,
		model.FieldAdditionalGuestAmounts,
		constant.FieldModifiedAt,
		constant.FieldModifiedBy,
	}
)

type Rate interface {
	Save(ctx context.Context, rate model.Rate) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Rate, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Rate]
}

func New(db *postgres.Connection, otel otel.Otel) Rate {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Rate](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// Save keeps a single row per (hotel, room type, rate plan); the latest push wins.
func (r *repositoryImpl) Save(ctx context.Context, rate model.Rate) error {
	return r.Upsert(ctx, rate, conflictColumns, updateColumns)
}
