package rtc

import (
	"testing"

	"github.com/dkeye/Convo/internal/config"
	"github.com/pion/webrtc/v4"
)

func TestICEServersDefault(t *testing.T) {
	got := ICEServers(nil)
	if len(got) != 1 || got[0].URLs[0] != DefaultSTUN {
		t.Fatalf("ICEServers(nil) = %+v", got)
	}
	if err := Validate(got); err != nil {
		t.Fatalf("default servers invalid: %v", err)
	}
}

func TestICEServersFromConfig(t *testing.T) {
	got := ICEServers([]config.ICEServer{
		{URLs: []string{"stun:stun.example.com:3478"}},
		{URLs: []string{"turn:turn.example.com:3478?transport=udp"}, Username: "u", Credential: "p"},
	})
	if len(got) != 2 {
		t.Fatalf("ICEServers = %+v", got)
	}
	if got[0].Credential != nil {
		t.Fatalf("stun server got a credential: %+v", got[0])
	}
	if got[1].Username != "u" || got[1].Credential != "p" {
		t.Fatalf("turn server = %+v", got[1])
	}
	if err := Validate(got); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string][]webrtc.ICEServer{
		"no urls":        {{}},
		"bad scheme":     {{URLs: []string{"http://stun.example.com"}}},
		"turn no secret": {{URLs: []string{"turn:turn.example.com:3478"}}},
	}
	for name, servers := range cases {
		if err := Validate(servers); err == nil {
			t.Errorf("%s: Validate accepted %+v", name, servers)
		}
	}
}
