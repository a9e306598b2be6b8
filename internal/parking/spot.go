package parking

import "fmt"

type SpotType int

const (
	Compact SpotType = iota
	Regular
	Large
)

func (st SpotType) String() string {
	switch st {
	case Compact:
		return "compact"
	case Regular:
		return "regular"
	case Large:
		return "large"
	}
	return "unknown"
}

func ParseSpotType(s string) (SpotType, error) {
	switch s {
	case "compact":
		return Compact, nil
	case "regular":
		return Regular, nil
	case "large":
		return Large, nil
	}
	return 0, fmt.Errorf("unknown spot type %q", s)
}

// SpotTypeFor maps a vehicle type to the one spot type it may occupy.
func SpotTypeFor(vt VehicleType) SpotType {
	switch vt {
	case Bike:
		return Compact
	case Truck:
		return Large
	default:
		return Regular
	}
}

// Spot is a single unit of parking capacity. The occupancy flag is
// unexported: it only transitions inside the ParkingLot critical section.
type Spot struct {
	Number   int
	Type     SpotType
	occupied bool
	vehicle  Vehicle
}

func NewSpot(number int, spotType SpotType) *Spot {
	return &Spot{
		Number: number,
		Type:   spotType,
	}
}

func (s *Spot) Occupied() bool {
	return s.occupied
}

// Vehicle returns the occupant currently parked on the spot. Only
// meaningful while the spot is occupied.
func (s *Spot) Vehicle() Vehicle {
	return s.vehicle
}

func (s *Spot) park(vehicle Vehicle) {
	s.vehicle = vehicle
	s.occupied = true
}

func (s *Spot) release() Vehicle {
	vehicle := s.vehicle
	s.vehicle = Vehicle{}
	s.occupied = false
	return vehicle
}
