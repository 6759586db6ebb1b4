package dto

import (
	"encoding/json"
	"otabridge/internal/domains/auditlog/model"
	"otabridge/shared"
	"otabridge/shared/constant"
	"otabridge/shared/timezone"
)

type AuditLogResponse struct {
	ID            string          `json:"id"`
	ReservationID string          `json:"reservation_id"`
	Process       string          `json:"process"`
	Input         json.RawMessage `json:"input" swaggertype:"object"`
	XMLSent       string          `json:"xml_sent"`
	Response      string          `json:"response"`
	Status        string          `json:"status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	Attempts      int             `json:"attempts"`
	HTTPStatus    int             `json:"http_status"`
	ArchiveKey    string          `json:"archive_key,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

func (r *AuditLogResponse) FromModel(model model.AuditLog) {
	r.ID = model.ID
	r.ReservationID = model.ReservationID
	r.Process = model.Process
	r.Input = json.RawMessage(model.Input)
	r.XMLSent = model.XMLSent
	r.Response = model.Response
	r.Status = model.Status
	r.ErrorMessage = model.ErrorMessage
	r.Attempts = model.Attempts
	r.HTTPStatus = model.HTTPStatus
	r.ArchiveKey = model.ArchiveKey
	r.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)

	if len(r.Input) == 0 {
		r.Input = json.RawMessage("{}")
	}
}

type GetAuditLogsResponse struct {
	AuditLogs []AuditLogResponse `json:"audit_logs"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetAuditLogsResponse) FromModels(models []model.AuditLog, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.AuditLogs = make([]AuditLogResponse, len(models))
	for i, mod := range models {
		r.AuditLogs[i].FromModel(mod)
	}
}

// Exchange is the archived form of one request/response pair.
type Exchange struct {
	AuditLogID    string `json:"audit_log_id"`
	ReservationID string `json:"reservation_id"`
	Process       string `json:"process"`
	Status        string `json:"status"`
	Request       string `json:"request"`
	Response      string `json:"response"`
	RecordedAt    string `json:"recorded_at"`
}
