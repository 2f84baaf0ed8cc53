package rtc

import (
	"fmt"
	"strings"

	"github.com/dkeye/Convo/internal/config"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const DefaultSTUN = "stun:stun.l.google.com:19302"

// ICEServers converts configured servers into the list handed to browsers.
// With nothing configured the public Google STUN server is used.
func ICEServers(servers []config.ICEServer) []webrtc.ICEServer {
	if len(servers) == 0 {
		return []webrtc.ICEServer{{URLs: []string{DefaultSTUN}}}
	}
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}

// Validate parses every URL and lets pion reject incomplete TURN entries by
// building and discarding a peer connection with the list.
func Validate(servers []webrtc.ICEServer) error {
	for _, s := range servers {
		if len(s.URLs) == 0 {
			return fmt.Errorf("ice server without urls")
		}
		for _, raw := range s.URLs {
			if !hasICEScheme(raw) {
				return fmt.Errorf("ice server url %q: unsupported scheme", raw)
			}
		}
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: servers})
	if err != nil {
		return fmt.Errorf("invalid ice servers: %w", err)
	}
	if err := pc.Close(); err != nil {
		log.Warn().Err(err).Str("module", "rtc").Msg("close probe peer connection")
	}
	log.Info().Str("module", "rtc").Int("servers", len(servers)).Msg("ice servers validated")
	return nil
}

func hasICEScheme(raw string) bool {
	url := strings.ToLower(strings.TrimSpace(raw))
	for _, scheme := range []string{"stun:", "stuns:", "turn:", "turns:"} {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}
