package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"otabridge/infras/otel"
	"otabridge/infras/postgres"
	"otabridge/internal/domains/auditlog/model"
	gDto "otabridge/shared/dto"
	gRepo "otabridge/shared/repository"
)

// AuditLog is append-only: there is no update or delete.
type AuditLog interface {
	Insert(ctx context.Context, entry model.AuditLog) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.AuditLog, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.AuditLog, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.AuditLog]
}

func New(db *postgres.Connection, otel otel.Otel) AuditLog {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.AuditLog](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
