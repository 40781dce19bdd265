package config

type CacheKeyStruct struct {
	// ProctorChannel is the Redis PubSub channel carrying live proctoring events.
	ProctorChannel string
}

var CacheKey = &CacheKeyStruct{
	ProctorChannel: "exam:proctor:events",
}
