package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixFlightBoard CachePrefix = "FLIGHT_BOARD"
	CachePrefixWatermark   CachePrefix = "WM_"
	CachePrefixTombstone   CachePrefix = "RIP_"
)

// BoardTopic is the single broadcast audience every viewer joins.
const BoardTopic = "FlightBoard"
