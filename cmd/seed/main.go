package main

import (
	"context"
	"log"
	"time"

	"github.com/swand-12/saloon-backend-admin/internal/appointments"
	"github.com/swand-12/saloon-backend-admin/internal/config"
	"github.com/swand-12/saloon-backend-admin/internal/db"
	"github.com/swand-12/saloon-backend-admin/internal/schedule"
)

type seedRequest struct {
	Name    string
	Email   string
	Phone   string
	Service string
	DayOff  int
	Time    string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	handle := db.NewHandle(cfg.MongoURI, cfg.MongoDB)
	defer handle.Close(context.Background())

	if err := db.EnsureIndexes(ctx, handle); err != nil {
		log.Fatal(err)
	}

	service := appointments.NewService(appointments.NewRepository(handle), cfg.Timezone, appointments.ServiceOptions{})

	requests := []seedRequest{
		{Name: "Amina Diallo", Email: "amina@example.com", Phone: "0611223344", Service: "Haircut", DayOff: 1, Time: "10:00"},
		{Name: "Lucas Martin", Email: "lucas@example.com", Phone: "0622334455", Service: "Beard trim", DayOff: 1, Time: "14:30"},
		{Name: "Sofia Rossi", Email: "sofia@example.com", Phone: "0633445566", Service: "Color", DayOff: 2, Time: "09:00"},
		{Name: "Noah Dubois", Email: "noah@example.com", Phone: "0644556677", Service: "Blow dry", DayOff: 3, Time: "16:15"},
	}

	today := time.Now().In(cfg.Timezone)
	for _, req := range requests {
		item, err := service.Create(ctx, appointments.CreateRequest{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Service: req.Service,
			Date:    today.AddDate(0, 0, req.DayOff).Format(schedule.DateLayout),
			Time:    req.Time,
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded request %s for %s on %s %s", item.ID, item.Name, item.Date, item.Time)
	}
}
