package command

import "testing"

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantData map[string]string
	}{
		{
			"with players",
			"There are 2 of a max of 20 players online: alice, bob",
			map[string]string{"online": "2", "max": "20", "players": "alice, bob"},
		},
		{
			"empty server",
			"There are 0 of a max of 20 players online:",
			map[string]string{"online": "0", "max": "20"},
		},
		{
			"unexpected shape",
			"Unknown command",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := parseList(nil, tt.raw)
			if payload.Message != tt.raw {
				t.Errorf("Message = %q, want the raw text", payload.Message)
			}
			if len(payload.Data) != len(tt.wantData) {
				t.Fatalf("Data = %v, want %v", payload.Data, tt.wantData)
			}
			for k, v := range tt.wantData {
				if payload.Data[k] != v {
					t.Errorf("Data[%q] = %q, want %q", k, payload.Data[k], v)
				}
			}
		})
	}
}

func TestParseSeed(t *testing.T) {
	payload := parseSeed(nil, "Seed: [-437815235]")
	if payload.Data["seed"] != "-437815235" {
		t.Errorf("Data = %v, want seed=-437815235", payload.Data)
	}

	payload = parseSeed(nil, "no seed here")
	if len(payload.Data) != 0 {
		t.Errorf("unrecognized shape should carry no data, got %v", payload.Data)
	}
	if payload.Message != "no seed here" {
		t.Errorf("Message = %q, want the raw text", payload.Message)
	}
}

func TestParsePlayerAction(t *testing.T) {
	payload := parsePlayerAction(Args{"player": "Spammer"}, "Player Spammer was kicked")
	if payload.Data["player"] != "Spammer" {
		t.Errorf("Data = %v, want player=Spammer", payload.Data)
	}

	payload = parsePlayerAction(Args{"player": "Spammer"}, "No player was found")
	if len(payload.Data) != 0 {
		t.Errorf("response without the player should carry no data, got %v", payload.Data)
	}
}
