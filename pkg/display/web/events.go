package web

// Event identifies a hub setting sent by a client as [10, Event, value].
type Event = uint8

const (
	_ Event = iota
	Compression
	CompressionLevel
	FramePatching
	FrameSkipping
	ClientStatus
	FramePatchingRatio
	RegisterUsername
	KeepAlive = 254
	Closing   = 255
)

// PlayerEvent identifies a player message, either a command sent by a
// client as [11, PlayerEvent] or a notification sent as
// [PlayerInfo, PlayerEvent, data...].
type PlayerEvent = uint8

const (
	PausePlay PlayerEvent = iota
	Status
	Title
	Fault
	Reset
	SaveState
	LoadState
)

// Type is the first byte of every message sent to a client.
type Type = uint8

const (
	Frame Type = iota
	FramePatch
	FrameSkip
	ClientInfo
	PatchCache
	PatchCacheSync
	FrameCache
	FrameCacheSync
	FrameSync
	ClientListSync
	ClientClosing
	ServerInfo
	PlayerInfo
)

// first bytes of messages received from a client
const (
	settingsMessage = 10
	commandMessage  = 11
)
