package partners

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadRosterCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partners.csv")
	data := "partner_name,address_line1,city,state,postal_code,latitude,longitude\n" +
		"Acme Mechanical,400 Oak Ave,Springfield,IL,62701,39.8,-89.6\n" +
		"Blue Ridge HVAC,12 Pine Rd,Chatham,IL,62629,,\n" +
		",skipped row,,,,,\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	roster, err := ReadRosterCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster = %+v", roster)
	}

	if roster[0].Name != "Acme Mechanical" || roster[0].Latitude == nil || *roster[0].Latitude != 39.8 {
		t.Fatalf("first = %+v", roster[0])
	}
	if roster[1].Name != "Blue Ridge HVAC" || roster[1].Latitude != nil {
		t.Fatalf("second = %+v", roster[1])
	}
}

func TestReadRosterCSVMissingNameColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partners.csv")
	if err := os.WriteFile(path, []byte("company,street\nAcme,400 Oak Ave\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRosterCSV(path); err == nil {
		t.Fatal("want error for missing partner_name column")
	}
}
