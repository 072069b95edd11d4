package block

import (
	"errors"
	"testing"
)

func TestByNameCaseInsensitive(t *testing.T) {
	cases := map[string]BlockID{
		"stone":       StoneBlockID,
		"STONE":       StoneBlockID,
		"Grass_Block": GrassBlockID,
		" oak_log ":   TreeBlockID,
		"air":         AirBlockID,
	}
	for name, want := range cases {
		got, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): неожиданная ошибка %v", name, err)
		}
		if got != want {
			t.Errorf("ByName(%q) = %d, ожидалось %d", name, got, want)
		}
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("unobtainium")
	if !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("ожидалась ErrUnknownBlock, получено %v", err)
	}
}

func TestNameAndString(t *testing.T) {
	if Name(GrassBlockID) != "GRASS_BLOCK" {
		t.Errorf("Name(GrassBlockID) = %s", Name(GrassBlockID))
	}
	if StoneBlockID.String() != "STONE" {
		t.Errorf("String() = %s", StoneBlockID.String())
	}
	if Name(BlockID(9999)) != "UNKNOWN(9999)" {
		t.Errorf("неизвестный блок: %s", Name(BlockID(9999)))
	}
	if !AirBlockID.IsAir() || StoneBlockID.IsAir() {
		t.Error("IsAir работает неверно")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	if err := Register(Info{ID: StoneBlockID, Name: "another_stone"}); err == nil {
		t.Error("ожидалась ошибка при повторном ID")
	}
	if err := Register(Info{ID: 5000, Name: "stone"}); err == nil {
		t.Error("ожидалась ошибка при повторном имени")
	}
	if err := Register(Info{ID: 5001, Name: "  "}); err == nil {
		t.Error("ожидалась ошибка при пустом имени")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("имена не отсортированы: %s > %s", names[i-1], names[i])
		}
	}
}
