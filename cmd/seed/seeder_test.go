package main

import "testing"

func TestEmbeddedSeedData(t *testing.T) {
	data, err := loadSeedData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(data.Folders) == 0 || len(data.Tags) == 0 {
		t.Fatalf("empty seed data: %+v", data)
	}

	names := make(map[string]bool)
	for _, s := range listSeeders() {
		names[s.Name()] = true
	}
	for _, want := range []string{"folders", "tags"} {
		if !names[want] {
			t.Errorf("seeder %q not registered", want)
		}
	}
}
