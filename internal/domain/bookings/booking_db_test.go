package bookings

import (
	"context"
	"testing"
	"time"

	"repairmybike-api/internal/domain/catalog"
	"repairmybike-api/internal/domain/plans"
	"repairmybike-api/internal/domain/vehicles"
	"repairmybike-api/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type workshop struct {
	model    vehicles.VehicleModel
	oil      catalog.Service
	brakes   catalog.Service
	oilPrice catalog.ServicePricing
}

func setupWorkshopDB(t *testing.T) (*gorm.DB, workshop) {
	t.Helper()
	db := testutil.NewTestDB(t,
		&vehicles.VehicleType{}, &vehicles.VehicleBrand{}, &vehicles.VehicleModel{},
		&catalog.ServiceCategory{}, &catalog.Service{}, &catalog.ServicePricing{},
		&plans.Plan{}, &plans.Subscription{},
		&Customer{}, &Booking{}, &BookingService{},
	)

	vt := vehicles.VehicleType{Name: "Motorcycle"}
	require.NoError(t, db.Create(&vt).Error)
	brand := vehicles.VehicleBrand{VehicleTypeID: vt.ID, Name: "Royal Enfield"}
	require.NoError(t, db.Create(&brand).Error)
	w := workshop{model: vehicles.VehicleModel{VehicleBrandID: brand.ID, Name: "Classic 350"}}
	require.NoError(t, db.Create(&w.model).Error)

	cat := catalog.ServiceCategory{Name: "Periodic Service"}
	require.NoError(t, db.Create(&cat).Error)
	w.oil = catalog.Service{CategoryID: cat.ID, Name: "Engine Oil Change"}
	w.brakes = catalog.Service{CategoryID: cat.ID, Name: "Brake Tuning"}
	require.NoError(t, db.Create(&w.oil).Error)
	require.NoError(t, db.Create(&w.brakes).Error)

	w.oilPrice = catalog.ServicePricing{ServiceID: w.oil.ID, VehicleModelID: w.model.ID, Price: decimal.RequireFromString("499.00")}
	brakePrice := catalog.ServicePricing{ServiceID: w.brakes.ID, VehicleModelID: w.model.ID, Price: decimal.RequireFromString("350.50")}
	require.NoError(t, db.Create(&w.oilPrice).Error)
	require.NoError(t, db.Create(&brakePrice).Error)
	return db, w
}

func seedSubscription(t *testing.T, db *gorm.DB, included, consumed int) plans.Subscription {
	t.Helper()
	plan := plans.Plan{
		Name:           "Rider Care",
		Slug:           "rider-care",
		Price:          decimal.RequireFromString("999.00"),
		IncludedVisits: included,
	}
	require.NoError(t, db.Create(&plan).Error)
	sub := plans.Subscription{
		PlanID:         plan.ID,
		ContactPhone:   "+919876543210",
		Status:         plans.StatusActive,
		StartDate:      time.Now().UTC(),
		VisitsConsumed: consumed,
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}

func workshopInput(w workshop) CreateInput {
	in := validInput(time.Now().UTC())
	in.VehicleModelID = w.model.ID
	in.ServiceIDs = []uint{w.oil.ID, w.brakes.ID, w.oil.ID}
	in.PaymentMethod = PaymentCash
	return in
}

func TestCreateSnapshotsPrices(t *testing.T) {
	db, w := setupWorkshopDB(t)
	ctx := context.Background()

	b, err := Create(ctx, db, workshopInput(w))
	require.NoError(t, err)

	require.Len(t, b.Services, 2)
	sum := decimal.Zero
	for _, line := range b.Services {
		sum = sum.Add(line.Price)
	}
	assert.Equal(t, "849.50", b.TotalAmount.StringFixed(2))
	assert.True(t, sum.Equal(b.TotalAmount))
	assert.Equal(t, StatusPending, b.BookingStatus)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.Equal(t, "Asha Rao", b.Customer.Name)
	require.NotNil(t, b.VehicleModel.VehicleBrand)
	assert.Equal(t, "Royal Enfield Classic 350", b.VehicleModel.DisplayName())

	require.NoError(t, db.Model(&w.oilPrice).Update("price", decimal.RequireFromString("650.00")).Error)

	reloaded, err := Load(db, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "849.50", reloaded.TotalAmount.StringFixed(2))
	for _, line := range reloaded.Services {
		if line.ServiceID == w.oil.ID {
			assert.Equal(t, "499.00", line.Price.StringFixed(2))
		}
	}

	second, err := Create(ctx, db, workshopInput(w))
	require.NoError(t, err)
	assert.Equal(t, "1000.50", second.TotalAmount.StringFixed(2))
	assert.Equal(t, b.CustomerID, second.CustomerID)

	var customers int64
	require.NoError(t, db.Model(&Customer{}).Count(&customers).Error)
	assert.Equal(t, int64(1), customers)
}

func TestCreateRejectsInactiveSubscription(t *testing.T) {
	db, w := setupWorkshopDB(t)
	sub := seedSubscription(t, db, 2, 0)
	require.NoError(t, db.Model(&sub).Update("status", plans.StatusCanceled).Error)

	in := workshopInput(w)
	in.SubscriptionID = &sub.ID
	_, err := Create(context.Background(), db, in)
	assert.ErrorIs(t, err, ErrSubscriptionInactive)

	var bookings int64
	require.NoError(t, db.Model(&Booking{}).Count(&bookings).Error)
	assert.Zero(t, bookings)
}

func TestCompleteConsumesSubscriptionVisit(t *testing.T) {
	tests := []struct {
		name         string
		included     int
		consumed     int
		wantConsumed bool
		wantVisits   int
	}{
		{"visit left", 2, 0, true, 1},
		{"last visit", 1, 0, true, 1},
		{"quota exhausted", 1, 1, false, 1},
		{"plan without visits", 0, 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, w := setupWorkshopDB(t)
			ctx := context.Background()
			sub := seedSubscription(t, db, tt.included, tt.consumed)

			in := workshopInput(w)
			in.SubscriptionID = &sub.ID
			b, err := Create(ctx, db, in)
			require.NoError(t, err)

			res, err := UpdateStatus(ctx, db, b.ID, StatusCompleted)
			require.NoError(t, err)
			assert.Equal(t, tt.wantConsumed, res.VisitConsumed)
			assert.Equal(t, tt.wantConsumed, res.Booking.SubscriptionVisitConsumed)
			assert.Equal(t, StatusCompleted, res.Booking.BookingStatus)
			assert.Equal(t, PaymentCompleted, res.Booking.PaymentStatus)

			var stored plans.Subscription
			require.NoError(t, db.First(&stored, sub.ID).Error)
			assert.Equal(t, tt.wantVisits, stored.VisitsConsumed)
		})
	}
}

func TestCompleteTwiceConsumesOnce(t *testing.T) {
	db, w := setupWorkshopDB(t)
	ctx := context.Background()
	sub := seedSubscription(t, db, 3, 0)

	in := workshopInput(w)
	in.SubscriptionID = &sub.ID
	b, err := Create(ctx, db, in)
	require.NoError(t, err)

	first, err := UpdateStatus(ctx, db, b.ID, StatusCompleted)
	require.NoError(t, err)
	assert.True(t, first.VisitConsumed)

	again, err := UpdateStatus(ctx, db, b.ID, StatusCompleted)
	require.NoError(t, err)
	assert.False(t, again.VisitConsumed)
	assert.True(t, again.Booking.SubscriptionVisitConsumed)

	var stored plans.Subscription
	require.NoError(t, db.First(&stored, sub.ID).Error)
	assert.Equal(t, 1, stored.VisitsConsumed)

	_, err = UpdateStatus(ctx, db, b.ID, StatusPending)
	assert.ErrorIs(t, err, ErrStatusTransition)
}
