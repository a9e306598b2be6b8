package parking

import "testing"

func TestNewVehicle(t *testing.T) {
	vehicle := NewVehicle("KA01HH1234", Car)

	if vehicle.Registration != "KA01HH1234" {
		t.Errorf("Expected registration KA01HH1234, got %s", vehicle.Registration)
	}
	if vehicle.Type != Car {
		t.Errorf("Expected car, got %s", vehicle.Type)
	}
}

func TestParseVehicleType(t *testing.T) {
	tests := []struct {
		input   string
		want    VehicleType
		wantErr bool
	}{
		{"bike", Bike, false},
		{"car", Car, false},
		{"truck", Truck, false},
		{"plane", 0, true},
		{"", 0, true},
		{"Car", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVehicleType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseVehicleType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseVehicleType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVehicleTypeString(t *testing.T) {
	tests := []struct {
		vt   VehicleType
		want string
	}{
		{Bike, "bike"},
		{Car, "car"},
		{Truck, "truck"},
		{VehicleType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.vt.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.vt, got, tt.want)
		}
	}
}
