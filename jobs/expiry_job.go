package jobs

import (
	"log"
	"time"

	config "github.com/benerin-indonesia/benerin/configs"
	"github.com/benerin-indonesia/benerin/database"
	"github.com/benerin-indonesia/benerin/services"
	"github.com/robfig/cron/v3"
)

const defaultPaymentExpiry = 24 * time.Hour

// ExpirePendingPayments cancels checkouts that stayed pending longer than PAYMENT_EXPIRY.
func ExpirePendingPayments() {
	log.Println("Running job: ExpirePendingPayments...")

	cutoff := time.Now().Add(-config.ConfigDuration("PAYMENT_EXPIRY", defaultPaymentExpiry))
	n, err := services.ExpireStalePayments(database.DB, cutoff)
	if err != nil {
		log.Printf("🔥 Error expiring pending payments: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Expired %d pending payments created before %s", n, cutoff.Format(time.RFC3339))
	}
}

// Schedule registers every background job on a new cron scheduler.
func Schedule() (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc("*/10 * * * *", ExpirePendingPayments); err != nil {
		return nil, err
	}
	return c, nil
}
