package domain

import (
	"encoding/json"
	"testing"
)

func TestZoneFor(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  TensionZone
	}{
		{"echo - 0.0", 0.0, ZoneEcho},
		{"echo boundary - 0.299", 0.299, ZoneEcho},
		{"friction - 0.3", 0.3, ZoneFriction},
		{"friction - 0.5", 0.5, ZoneFriction},
		{"friction boundary - 0.7", 0.7, ZoneFriction},
		{"chaos - 0.701", 0.701, ZoneChaos},
		{"chaos - 1.2", 1.2, ZoneChaos},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ZoneFor(tt.value)
			if got != tt.want {
				t.Errorf("ZoneFor(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestAuditVerdict(t *testing.T) {
	tests := []struct {
		verdict    string
		pass, fail bool
	}{
		{"Pass", true, false},
		{"Certified / 認證通過", true, false},
		{"FAIL", false, true},
		{"High Risk", false, true},
		{"", false, false},
	}

	for _, tt := range tests {
		a := Audit{AuditVerdict: tt.verdict}
		if a.Passed() != tt.pass {
			t.Errorf("Audit{%q}.Passed() = %v, want %v", tt.verdict, a.Passed(), tt.pass)
		}
		if a.Failed() != tt.fail {
			t.Errorf("Audit{%q}.Failed() = %v, want %v", tt.verdict, a.Failed(), tt.fail)
		}
	}
}

func TestNewDeliberationRequest_BoundsMemory(t *testing.T) {
	var memory []MemoryTurn
	for i := 0; i < 8; i++ {
		memory = append(memory, MemoryTurn{User: string(rune('a' + i)), AI: "ok"})
	}

	req := NewDeliberationRequest("now", memory, 5)
	if len(req.Memory) != 5 {
		t.Fatalf("expected 5 turns, got %d", len(req.Memory))
	}
	if req.Memory[0].User != "d" || req.Memory[4].User != "h" {
		t.Errorf("expected trailing window d..h, got %q..%q", req.Memory[0].User, req.Memory[4].User)
	}

	memory[7].User = "mutated"
	if req.Memory[4].User != "h" {
		t.Error("request must not alias the caller's memory slice")
	}
}

func TestNewDeliberationRequest_DefaultWindow(t *testing.T) {
	memory := make([]MemoryTurn, 9)
	req := NewDeliberationRequest("x", memory, 0)
	if len(req.Memory) != DefaultMemoryWindow {
		t.Errorf("expected default window %d, got %d", DefaultMemoryWindow, len(req.Memory))
	}
}

func TestCouncilChamber_AlwaysThreeKeys(t *testing.T) {
	var c CouncilChamber
	c.Set(PersonaPhilosopher, RoleOutput{Stance: "meaning first"})

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d: %s", len(keys), raw)
	}
	for _, p := range Personas {
		if _, ok := keys[string(p)]; !ok {
			t.Errorf("missing key %q in %s", p, raw)
		}
	}
	if string(keys["engineer"]) != "{}" {
		t.Errorf("empty role should serialize as {}, got %s", keys["engineer"])
	}
}

func TestCouncilChamber_Populated(t *testing.T) {
	var c CouncilChamber
	c.Set(PersonaGuardian, RoleOutput{RiskLevel: "high"})
	c.Set(Persona("oracle"), RoleOutput{Stance: "ignored"})

	got := c.Populated()
	if len(got) != 1 || got[0] != PersonaGuardian {
		t.Errorf("expected [guardian], got %v", got)
	}
	if !c.Get(Persona("oracle")).IsEmpty() {
		t.Error("unknown persona should read as empty")
	}
}

func TestRoleOutput_KeepsCriticalTo(t *testing.T) {
	var r RoleOutput
	if err := json.Unmarshal([]byte(`{"critical_to":"the family budget"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.CriticalTo != "the family budget" {
		t.Fatalf("expected critical_to to decode, got %+v", r)
	}
	if r.IsEmpty() {
		t.Error("a role with only critical_to is not empty")
	}

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"critical_to":"the family budget"}` {
		t.Errorf("unexpected encoding %s", raw)
	}
}
