package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

const (
	TableName  = "audit_logs"
	EntityName = "audit log"

	FieldID            = "id"
	FieldReservationID = "reservation_id"
	FieldProcess       = "process"
	FieldStatus        = "status"
	FieldCreatedAt     = "created_at"
)

// Gateway operations recorded in the audit log.
const (
	ProcessCreate = "Reservation"
	ProcessAmend  = "Amend Reservation"
	ProcessCancel = "Cancellation"
)

const (
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// AuditLog is one append-only record of a remote reservation call. Input is
// the caller's request as JSON and XMLSent the exact document posted.
type AuditLog struct {
	ID            string         `db:"id"`
	ReservationID string         `db:"reservation_id"`
	Process       string         `db:"process"`
	Input         types.JSONText `db:"input"`
	XMLSent       string         `db:"xml_sent"`
	Response      string         `db:"response"`
	Status        string         `db:"status"`
	ErrorMessage  string         `db:"error_message"`
	Attempts      int            `db:"attempts"`
	HTTPStatus    int            `db:"http_status"`
	ArchiveKey    string         `db:"archive_key"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (a AuditLog) Succeeded() bool {
	return a.Status == StatusSuccess
}
