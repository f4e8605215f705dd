// Package eta estimates delivery metrics for orders dispatched from the
// warehouse: straight-line distance, courier travel time, CO2 footprint and a
// candidate order to merge the delivery with.
package eta

import (
	"context"
	"math"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/order"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	"github.com/bod9dzys/order-api-mvp/pkg/logger"
)

const (
	// WarehouseLatitude and WarehouseLongitude locate the single dispatch
	// warehouse all deliveries start from.
	WarehouseLatitude  = 50.4501
	WarehouseLongitude = 30.5234

	// CourierSpeedKMPerMinute is the average courier speed used for ETA.
	CourierSpeedKMPerMinute = 0.5

	// CO2GramsPerKM is the emission factor of the delivery fleet.
	CO2GramsPerKM = 121.0

	// MergeRadiusKM bounds how far apart two drop-off points may be for
	// their deliveries to be suggested as a single trip.
	MergeRadiusKM = 3.0
)

// Service computes delivery estimates against the order store.
type Service struct {
	store storage.OrderStore
	log   *logger.Logger
}

func New(store storage.OrderStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("eta")
	}
	return &Service{store: store, log: log}
}

// Calculate resolves the order, derives distance, travel time and emissions
// from the warehouse to the customer's coordinates, and scans other pending
// orders for the oldest one close enough to share the trip with.
func (s *Service) Calculate(ctx context.Context, orderID string) (order.ETA, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return order.ETA{}, err
	}

	distance := haversineKM(WarehouseLatitude, WarehouseLongitude, o.Customer.Latitude, o.Customer.Longitude)

	est := order.ETA{
		OrderID:    o.ID,
		DistanceKM: round2(distance),
		ETAMinutes: round2(distance / CourierSpeedKMPerMinute),
		CO2Grams:   round2(distance * CO2GramsPerKM),
	}

	merge, err := s.findMergeCandidate(ctx, o)
	if err != nil {
		return order.ETA{}, err
	}
	est.SuggestedMergeWith = merge

	return est, nil
}

// findMergeCandidate returns the ID of the oldest pending order, other than
// the one being estimated, whose drop-off point falls within MergeRadiusKM of
// this order's drop-off point. Returns nil when no such order exists.
func (s *Service) findMergeCandidate(ctx context.Context, o order.Order) (*string, error) {
	pending, err := s.store.ListOrdersByStatus(ctx, order.StatusPending)
	if err != nil {
		return nil, err
	}
	for _, cand := range pending {
		if cand.ID == o.ID {
			continue
		}
		d := haversineKM(o.Customer.Latitude, o.Customer.Longitude, cand.Customer.Latitude, cand.Customer.Longitude)
		if d <= MergeRadiusKM {
			id := cand.ID
			return &id, nil
		}
	}
	return nil, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
