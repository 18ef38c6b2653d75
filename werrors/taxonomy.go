package werrors

// Scheduler errors (spec.md §4.1, §7).
const (
	SchedulerInvalidArg CodeError = 1000 + iota
	SchedulerCapacityExceeded
	SchedulerOOM
	SchedulerInvalidOperation
)

// Server init errors (spec.md §6, §7).
const (
	ServerNoConfig CodeError = 2000 + iota
	ServerInvalidConfig
	ServerInvalidPort
	ServerInvalidAddress
	ServerGetaddrinfo
	ServerSocketBind
	ServerSocketListen
	ServerSetNonblocking
	ServerOOM
)

// Connection errors (spec.md §4.5, §7).
const (
	ConnRead CodeError = 3000 + iota
	ConnTimeout
	ConnRequestTooLarge
	ConnMalformed
	ConnInternal
	ConnSend
	ConnSendEPIPE
	ConnSendECONNRESET
	ConnSendEFAULT
)

// Parser errors (spec.md §4.2, §7).
const (
	ParserUnknown CodeError = 4000 + iota
	ParserMalformed
	ParserOOM
	ParserURLTooLong
)

// Backend errors (spec.md §4.6, §7).
const (
	BackendInitFail CodeError = 5000 + iota
	BackendWorkFail
)

func init() {
	RegisterMessage(SchedulerInvalidArg, "invalid argument")
	RegisterMessage(SchedulerCapacityExceeded, "scheduler at capacity")
	RegisterMessage(SchedulerOOM, "scheduler out of memory")
	RegisterMessage(SchedulerInvalidOperation, "operation invalid outside a running task")

	RegisterMessage(ServerNoConfig, "no server configuration provided")
	RegisterMessage(ServerInvalidConfig, "invalid server configuration")
	RegisterMessage(ServerInvalidPort, "invalid port")
	RegisterMessage(ServerInvalidAddress, "invalid bind address")
	RegisterMessage(ServerGetaddrinfo, "address resolution failed")
	RegisterMessage(ServerSocketBind, "socket bind failed")
	RegisterMessage(ServerSocketListen, "socket listen failed")
	RegisterMessage(ServerSetNonblocking, "failed to set socket non-blocking")
	RegisterMessage(ServerOOM, "server out of memory")

	RegisterMessage(ConnRead, "connection read error")
	RegisterMessage(ConnTimeout, "connection read timeout")
	RegisterMessage(ConnRequestTooLarge, "request too large")
	RegisterMessage(ConnMalformed, "malformed request")
	RegisterMessage(ConnInternal, "internal server error")
	RegisterMessage(ConnSend, "connection write error")
	RegisterMessage(ConnSendEPIPE, "connection write error: broken pipe")
	RegisterMessage(ConnSendECONNRESET, "connection write error: reset by peer")
	RegisterMessage(ConnSendEFAULT, "connection write error: bad buffer")

	RegisterMessage(ParserUnknown, "unknown parser error")
	RegisterMessage(ParserMalformed, "malformed HTTP request")
	RegisterMessage(ParserOOM, "parser out of memory")
	RegisterMessage(ParserURLTooLong, "request URL too long")

	RegisterMessage(BackendInitFail, "backend initialization failed")
	RegisterMessage(BackendWorkFail, "backend work step failed")
}
