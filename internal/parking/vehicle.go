package parking

import "fmt"

type VehicleType int

const (
	Bike VehicleType = iota
	Car
	Truck
)

func (vt VehicleType) String() string {
	switch vt {
	case Bike:
		return "bike"
	case Car:
		return "car"
	case Truck:
		return "truck"
	}
	return "unknown"
}

func ParseVehicleType(s string) (VehicleType, error) {
	switch s {
	case "bike":
		return Bike, nil
	case "car":
		return Car, nil
	case "truck":
		return Truck, nil
	}
	return 0, fmt.Errorf("unknown vehicle type %q", s)
}

// Vehicle is the caller-supplied value requesting a spot. The lot copies
// it into tickets and never keeps a reference to the caller's instance.
type Vehicle struct {
	Registration string
	Type         VehicleType
}

func NewVehicle(registration string, vehicleType VehicleType) Vehicle {
	return Vehicle{
		Registration: registration,
		Type:         vehicleType,
	}
}
