package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"otabridge/infras/otel"
	"otabridge/infras/postgres"
	"otabridge/internal/domains/reservation/model"
	gDto "otabridge/shared/dto"
	gRepo "otabridge/shared/repository"
	"time"
)

const (
	argExpectedStatus  = "expected_status"
	argExpectedVersion = "expected_version"
	argClaimNow        = "claim_now"
)

type Reservation interface {
	Insert(ctx context.Context, reservation model.Reservation) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	Transition(ctx context.Context, current model.Reservation, mod map[string]any) (bool, error)
	Claim(ctx context.Context, current model.Reservation, now, until time.Time) (bool, error)
	Release(ctx context.Context, current model.Reservation) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// Transition applies mod only while the row still has current's status and
// version, and reports whether it did. A false result means another request
// moved the reservation first.
func (r *repositoryImpl) Transition(ctx context.Context, current model.Reservation, mod map[string]any) (bool, error) {
	return r.CompareAndUpdate(ctx, mod, unchanged(current))
}

// Claim marks the reservation as having a remote call in flight until until.
// It succeeds only while the row is unchanged and no other claim is live at
// now, so at most one amend or cancel reaches the remote system per version.
func (r *repositoryImpl) Claim(ctx context.Context, current model.Reservation, now, until time.Time) (bool, error) {
	return r.CompareAndUpdate(ctx, map[string]any{model.FieldClaimedUntil: until}, gDto.And(
		unchanged(current),
		gDto.FilterGroup{Operator: gDto.FilterGroupOperatorOr, Filters: []any{
			gDto.Filter{Field: model.FieldClaimedUntil, Operator: gDto.FilterIsNull},
			gDto.Filter{ArgName: argClaimNow, Field: model.FieldClaimedUntil, Value: now, Operator: gDto.FilterOperatorLessEq},
		}},
	))
}

// Release drops a claim taken on current after the remote call failed.
func (r *repositoryImpl) Release(ctx context.Context, current model.Reservation) error {
	return r.Update(ctx, map[string]any{model.FieldClaimedUntil: nil}, unchanged(current))
}

func unchanged(current model.Reservation) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(model.FieldID, current.ID),
		gDto.Filter{ArgName: argExpectedStatus, Field: model.FieldStatus, Value: string(current.Status), Operator: gDto.FilterOperatorEq},
		gDto.Filter{ArgName: argExpectedVersion, Field: model.FieldVersion, Value: current.Version, Operator: gDto.FilterOperatorEq},
	)
}
