package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"otabridge/config"
	kafkaMocks "otabridge/infras/kafka/mocks"
	"otabridge/infras/otel/mocks"
	inventoryMocks "otabridge/internal/domains/inventory/mocks"
	"otabridge/internal/domains/inventory/model"
	"otabridge/internal/domains/inventory/service"
	"otabridge/internal/ota"
	cacheMocks "otabridge/shared/cache/mocks"
	gDto "otabridge/shared/dto"
	"otabridge/shared/timezone"
)

func daysFromToday(days int) string {
	return timezone.FormatDate(timezone.Today().AddDate(0, 0, days))
}

func entry(room, start, end, count string) ota.Inventory {
	return ota.Inventory{
		StatusApplicationControl: &ota.StatusApplicationControl{InvTypeCode: room, Start: start, End: end},
		InvCounts:                &ota.InvCounts{InvCount: []ota.InvCount{{Count: count}}},
	}
}

func document(entries ...ota.Inventory) *ota.InvCountNotifRQ {
	return &ota.InvCountNotifRQ{
		Envelope: ota.NewEnvelope("inv-001", "2030-01-01T00:00:00"),
		POS:      ota.NewPOS(ota.Credentials{RequestorID: "wincloud", Context: "WINCLOUD", MessagePassword: "x"}),
		Inventories: &ota.Inventories{
			HotelCode: "H1",
			HotelName: "Harbour Hotel",
			Inventory: entries,
		},
	}
}

func TestInventoryService_Sync(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := inventoryMocks.NewMockInventory(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.Topic.Sync = "sync"

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockKafka.EXPECT().SendMessages(gomock.Any(), "sync", gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, cfg, mockCache, mockKafka, mocks.NewOtel())

	tests := []struct {
		name        string
		doc         *ota.InvCountNotifRQ
		setupMock   func()
		wantApplied int
		wantType    string
		wantIndex   int
		wantErr     bool
	}{
		{
			name: "entries stored in document order",
			doc: document(
				entry("DBL", daysFromToday(0), daysFromToday(9), "4"),
				entry("TWN", daysFromToday(1), daysFromToday(1), "0"),
			),
			setupMock: func() {
				gomock.InOrder(
					mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, inv model.Inventory) error {
						assert.Equal(t, "H1", inv.HotelCode)
						assert.Equal(t, "Harbour Hotel", inv.HotelName)
						assert.Equal(t, "DBL", inv.RoomTypeCode)
						assert.Equal(t, 4, inv.Count)
						assert.Equal(t, "wincloud", inv.CreatedBy)
						assert.NotEmpty(t, inv.ID)

						return nil
					}),
					mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, inv model.Inventory) error {
						assert.Equal(t, "TWN", inv.RoomTypeCode)
						assert.Equal(t, 0, inv.Count)
						assert.True(t, inv.StartDate.Equal(inv.EndDate))

						return nil
					}),
				)
			},
			wantApplied: 2,
		},
		{
			name:      "invalid start date format",
			doc:       document(entry("DBL", "01/05/2030", daysFromToday(3), "4")),
			setupMock: func() {},
			wantType:  ota.ErrTypeInvalidDateFormat,
			wantIndex: 0,
			wantErr:   true,
		},
		{
			name: "end before start on a later entry rejects the whole document",
			doc: document(
				entry("DBL", daysFromToday(1), daysFromToday(2), "4"),
				entry("DBL", daysFromToday(5), daysFromToday(4), "4"),
			),
			setupMock: func() {},
			wantType:  ota.ErrTypeDateRange,
			wantIndex: 1,
			wantErr:   true,
		},
		{
			name:      "start in the past",
			doc:       document(entry("DBL", daysFromToday(-1), daysFromToday(3), "4")),
			setupMock: func() {},
			wantType:  ota.ErrTypeInvalidStartDate,
			wantIndex: 0,
			wantErr:   true,
		},
		{
			name:      "negative count",
			doc:       document(entry("DBL", daysFromToday(1), daysFromToday(3), "-1")),
			setupMock: func() {},
			wantType:  ota.ErrTypeInvalidCount,
			wantIndex: 0,
			wantErr:   true,
		},
		{
			name:      "signed count",
			doc:       document(entry("DBL", daysFromToday(1), daysFromToday(3), "+5")),
			setupMock: func() {},
			wantType:  ota.ErrTypeInvalidCount,
			wantIndex: 0,
			wantErr:   true,
		},
		{
			name:      "non numeric count",
			doc:       document(entry("DBL", daysFromToday(1), daysFromToday(3), "four")),
			setupMock: func() {},
			wantType:  ota.ErrTypeInvalidCount,
			wantIndex: 0,
			wantErr:   true,
		},
		{
			name: "repository error",
			doc:  document(entry("DBL", daysFromToday(1), daysFromToday(3), "2")),
			setupMock: func() {
				mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			applied, err := svc.Sync(context.Background(), tt.doc)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.wantApplied, applied)

				return
			}

			require.Error(t, err)

			var verr *ota.ValidationError
			if tt.wantType == "" {
				assert.False(t, errors.As(err, &verr))

				return
			}

			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantType, verr.Type)
			assert.Equal(t, tt.wantIndex, verr.Index)
		})
	}
}

func TestInventoryService_Sync_Replay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := inventoryMocks.NewMockInventory(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockKafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	// the upsert key fully determines the row, so replaying a document
	// converges on the same stored state
	type key struct{ hotel, room, start string }

	store := map[key]model.Inventory{}
	mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, inv model.Inventory) error {
		store[key{inv.HotelCode, inv.RoomTypeCode, timezone.FormatDate(inv.StartDate)}] = inv

		return nil
	}).Times(4)

	svc := service.New(mockRepo, &config.Config{}, mockCache, mockKafka, mocks.NewOtel())
	doc := document(
		entry("DBL", daysFromToday(1), daysFromToday(4), "3"),
		entry("TWN", daysFromToday(1), daysFromToday(4), "1"),
	)

	_, err := svc.Sync(context.Background(), doc)
	require.NoError(t, err)

	first := map[key]int{}
	for k, v := range store {
		first[k] = v.Count
	}

	_, err = svc.Sync(context.Background(), doc)
	require.NoError(t, err)

	assert.Len(t, store, 2)

	for k, v := range store {
		assert.Equal(t, first[k], v.Count)
	}
}

func TestInventoryService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := inventoryMocks.NewMockInventory(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	svc := service.New(mockRepo, cfg, mockCache, mockKafka, mocks.NewOtel())

	params := gDto.QueryParams{Page: 1, Limit: 10}
	filter := gDto.And(gDto.Eq(model.FieldHotelCode, "H1"))

	tests := []struct {
		name      string
		setupMock func()
		wantTotal int
		wantErr   bool
	}{
		{
			name: "from repository",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
				mockRepo.EXPECT().Count(gomock.Any(), filter).Return(1, nil)
				mockRepo.EXPECT().GetAll(gomock.Any(), params, filter).Return([]model.Inventory{{ID: "1", HotelCode: "H1", Count: 2}}, nil)
				mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), 60).Return(nil).AnyTimes()
			},
			wantTotal: 1,
		},
		{
			name: "count error",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
				mockRepo.EXPECT().Count(gomock.Any(), filter).Return(0, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.GetAll(context.Background(), params, filter)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, res.TotalData)
			assert.Len(t, res.Inventories, 1)
		})
	}
}
