package pubsub

import "strings"

// Channel naming conventions for the support chat bus.
const (
	// ChannelGroups carries group pushes between service instances.
	ChannelGroups = "support:groups"
)

// Event types carried on the bus.
const (
	EventGroupPush = "group_push"
)

// ChannelToTopic maps a Redis-style channel name to a Kafka topic name.
//
//	"support:groups" → "support-groups"
func ChannelToTopic(channel string) string {
	return strings.ReplaceAll(channel, ":", "-")
}
