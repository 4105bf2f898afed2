package constant

const (
	// MaxMessageSize caps a single websocket frame on the live channel.
	MaxMessageSize int64 = 1 << 20
)
