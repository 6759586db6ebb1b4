package model

import (
	"otabridge/shared/model"
	"time"
)

const (
	TableName  = "inventories"
	EntityName = "inventory"

	FieldID           = "id"
	FieldHotelCode    = "hotel_code"
	FieldHotelName    = "hotel_name"
	FieldRoomTypeCode = "room_type_code"
	FieldStartDate    = "start_date"
	FieldEndDate      = "end_date"
	FieldCount        = "count"
)

// Inventory is the number of rooms of one type available over [StartDate, EndDate].
type Inventory struct {
	ID           string    `db:"id"`
	HotelCode    string    `db:"hotel_code"`
	HotelName    string    `db:"hotel_name"`
	RoomTypeCode string    `db:"room_type_code"`
	StartDate    time.Time `db:"start_date"`
	EndDate      time.Time `db:"end_date"`
	Count        int       `db:"count"`
	model.Metadata
}
