package score

import "testing"

func TestParseChannelSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		track   int
		chans   []int
		wantErr bool
	}{
		{"bare channel defaults track", "16", 0, []int{15}, false},
		{"track and multiple channels", "1:2,3", 0, []int{1, 2}, false},
		{"track zero is invalid", "0:1", 0, nil, true},
		{"whitespace tolerant", " 7 : 1 , 15 ", 6, []int{0, 14}, false},
		{"channel out of range", "1:17", 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChannelSpec(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseChannelSpec(%q) = %+v, want error", tt.spec, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChannelSpec(%q) returned error: %v", tt.spec, err)
			}
			if got.Track != tt.track {
				t.Errorf("Track = %d, want %d", got.Track, tt.track)
			}
			for _, ch := range tt.chans {
				if !got.Channels[ch] {
					t.Errorf("Channels missing %d: %+v", ch, got.Channels)
				}
			}
			if len(got.Channels) != len(tt.chans) {
				t.Errorf("Channels = %+v, want exactly %v", got.Channels, tt.chans)
			}
		})
	}
}
