package staff

import (
	"testing"

	"repairmybike-api/internal/domain/bookings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBuildStatsZeroFills(t *testing.T) {
	stats := buildStats(
		[]statusCount{{Status: "pending", Count: 3}, {Status: "completed", Count: 2}},
		[]statusCount{{Status: bookings.PaymentCompleted, Count: 2}},
		1,
	)

	assert.Equal(t, int64(5), stats["total_bookings"])
	assert.Equal(t, int64(1), stats["today"])

	byStatus := stats["booking_status"].(gin.H)
	for _, s := range bookings.AllStatuses() {
		assert.Contains(t, byStatus, string(s))
	}
	assert.Equal(t, int64(3), byStatus["pending"])
	assert.Equal(t, int64(0), byStatus["cancelled"])

	byPayment := stats["payment_status"].(gin.H)
	assert.Equal(t, int64(0), byPayment[bookings.PaymentPending])
	assert.Equal(t, int64(2), byPayment[bookings.PaymentCompleted])
}

func TestBuildStatsEmpty(t *testing.T) {
	stats := buildStats(nil, nil, 0)
	assert.Equal(t, int64(0), stats["total_bookings"])
	assert.Len(t, stats["booking_status"].(gin.H), len(bookings.AllStatuses()))
}
