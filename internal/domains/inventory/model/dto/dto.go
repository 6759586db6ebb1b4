package dto

import (
	"otabridge/internal/domains/inventory/model"
	"otabridge/shared"
	gDto "otabridge/shared/dto"
	"otabridge/shared/timezone"
)

type InventoryResponse struct {
	ID           string `json:"id"`
	HotelCode    string `json:"hotel_code"`
	HotelName    string `json:"hotel_name"`
	RoomTypeCode string `json:"room_type_code"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Count        int    `json:"count"`
	gDto.Metadata
}

func (r *InventoryResponse) FromModel(model model.Inventory) {
	r.ID = model.ID
	r.HotelCode = model.HotelCode
	r.HotelName = model.HotelName
	r.RoomTypeCode = model.RoomTypeCode
	r.StartDate = timezone.FormatDate(model.StartDate)
	r.EndDate = timezone.FormatDate(model.EndDate)
	r.Count = model.Count
	r.Metadata.FromModel(model.Metadata)
}

type GetInventoriesResponse struct {
	Inventories []InventoryResponse `json:"inventories"`
	TotalPage   int                 `json:"total_page"`
	TotalData   int                 `json:"total_data"`
}

func (r *GetInventoriesResponse) FromModels(models []model.Inventory, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Inventories = make([]InventoryResponse, len(models))
	for i, mod := range models {
		r.Inventories[i].FromModel(mod)
	}
}
