package protocol

// ChannelKind is the output bank a channel belongs to
type ChannelKind uint8

const (
	KindRelay ChannelKind = iota
	KindIndicator
	KindContactor
)

// Channel is one switchable output as the controller sees it
type Channel struct {
	Name  string // display name
	Token string // command stem, completed by "on" or "off"
	Kind  ChannelKind
	Index int // 0-based within its bank
}

// Channels lists every output in board order: relays C..H, RGB 1..3, AC 1..2
var Channels = [RelayCount + IndicatorCount + ContactorCount]Channel{
	{"Relay C", "relayc", KindRelay, 0},
	{"Relay D", "relayd", KindRelay, 1},
	{"Relay E", "relaye", KindRelay, 2},
	{"Relay F", "relayf", KindRelay, 3},
	{"Relay G", "relayg", KindRelay, 4},
	{"Relay H", "relayh", KindRelay, 5},
	{"RGB 1", "rgb1", KindIndicator, 0},
	{"RGB 2", "rgb2", KindIndicator, 1},
	{"RGB 3", "rgb3", KindIndicator, 2},
	{"AC 1", "ac1", KindContactor, 0},
	{"AC 2", "ac2", KindContactor, 1},
}

// Global commands
const (
	CommandAllOn  = "allon"
	CommandAllOff = "alloff"
)

// Command returns the command that switches the channel
func (c Channel) Command(on bool) string {
	if on {
		return c.Token + "on"
	}
	return c.Token + "off"
}

// State reports the channel's bit in s
func (c Channel) State(s *Status) bool {
	switch c.Kind {
	case KindRelay:
		return s.Relay(c.Index)
	case KindIndicator:
		return s.Indicator(c.Index)
	case KindContactor:
		return s.Contactor(c.Index)
	default:
		return false
	}
}
