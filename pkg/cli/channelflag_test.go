package cli

import "testing"

func TestChannelSpecListAccumulates(t *testing.T) {
	var list ChannelSpecList
	if err := list.Set("1:2,3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := list.Set("16"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(list.Values) != 2 {
		t.Fatalf("Values = %+v, want 2 entries", list.Values)
	}
	if list.Values[0].Track != 0 || !list.Values[0].Channels[1] || !list.Values[0].Channels[2] {
		t.Errorf("first spec = %+v", list.Values[0])
	}
	if list.Values[1].Track != 0 || !list.Values[1].Channels[15] {
		t.Errorf("second spec = %+v", list.Values[1])
	}
}

func TestChannelSpecListRejectsInvalid(t *testing.T) {
	var list ChannelSpecList
	if err := list.Set("0:1"); err == nil {
		t.Error("expected error for track 0")
	}
	if len(list.Values) != 0 {
		t.Errorf("Values = %+v, want none after a rejected Set", list.Values)
	}
}

func TestChannelSpecListString(t *testing.T) {
	var list ChannelSpecList
	_ = list.Set("1:2,3")
	got := list.String()
	want := "1:2,3"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
