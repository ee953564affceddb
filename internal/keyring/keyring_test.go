package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	if err := SetWeatherAPIKey("owm-key-1234"); err != nil {
		t.Fatalf("SetWeatherAPIKey() failed: %v", err)
	}
	if err := SetConnectionString("postgres://ada@localhost:5432/homebase"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	key, err := GetWeatherAPIKey()
	if err != nil || key != "owm-key-1234" {
		t.Errorf("GetWeatherAPIKey() = %q, %v", key, err)
	}
	dsn, err := GetConnectionString()
	if err != nil || dsn != "postgres://ada@localhost:5432/homebase" {
		t.Errorf("GetConnectionString() = %q, %v", dsn, err)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()
	if err := Set(WeatherAPIKey, ""); err == nil {
		t.Error("Set with empty value should return an error")
	}
}

func TestNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = Delete(WeatherAPIKey)

	if _, err := Get(WeatherAPIKey); err != ErrNotFound {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
	if err := Delete(WeatherAPIKey); err != ErrNotFound {
		t.Errorf("Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()
	if err := Set(ConnectionString, "host=localhost user=ada"); err != nil {
		t.Fatal(err)
	}
	if err := Delete(ConnectionString); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get(ConnectionString); err != ErrNotFound {
		t.Errorf("after Delete(), Get() error = %v, want %v", err, ErrNotFound)
	}
}

func TestParseSecret(t *testing.T) {
	tests := []struct {
		in   string
		want Secret
		ok   bool
	}{
		{"weather", WeatherAPIKey, true},
		{"db", ConnectionString, true},
		{string(ConnectionString), ConnectionString, true},
		{"ssh", "", false},
	}
	for _, tt := range tests {
		got, err := ParseSecret(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseSecret(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("abcdef123456"); got != "****3456" {
		t.Errorf("Mask() = %q", got)
	}
	if got := Mask("abc"); got != "****" {
		t.Errorf("Mask() = %q", got)
	}
}

func TestIsAvailableWithMock(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("mock keyring should be available")
	}
}
