package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"otabridge/infras/otel"
	"otabridge/infras/postgres"
	"otabridge/internal/domains/inventory/model"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	gRepo "otabridge/shared/repository"
)

var (
	conflictColumns = []string{model.FieldHotelCode, model.FieldRoomTypeCode, model.FieldStartDate}
	updateColumns   = []string{model.FieldHotelName, model.FieldEndDate, model.FieldCount, constant.FieldModifiedAt, constant.FieldModifiedBy}
)

type Inventory interface {
	Save(ctx context.Context, inventory model.Inventory) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Inventory, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Inventory]
}

func New(db *postgres.Connection, otel otel.Otel) Inventory {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Inventory](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// Save upserts on (hotel, room type, start date); a later push for the same
// window start overwrites end date and count.
func (r *repositoryImpl) Save(ctx context.Context, inventory model.Inventory) error {
	return r.Upsert(ctx, inventory, conflictColumns, updateColumns)
}
