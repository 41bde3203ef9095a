package latch

import "latchfw/bus"

// fw/...
func topicConfig() bus.Topic  { return bus.T("config", "firmware") }
func topicState() bus.Topic   { return bus.T("fw", "state") }
func topicStatus() bus.Topic  { return bus.T("fw", "status") }
func topicLatch() bus.Topic   { return bus.T("fw", "latch", "value") }
func ctrlWildcard() bus.Topic { return bus.T("fw", "control", "+") }

// fw/button/<bit>/event/<tag>
func topicButtonEvent(bit uint8, tag string) bus.Topic {
	return bus.T("fw", "button", int(bit), "event", tag)
}

// Exported forms for other services and tools.

func LatchTopic() bus.Topic              { return topicLatch() }
func StateTopic() bus.Topic              { return topicState() }
func StatusTopic() bus.Topic             { return topicStatus() }
func ConfigTopic() bus.Topic             { return topicConfig() }
func ControlTopic(verb string) bus.Topic { return bus.T("fw", "control", verb) }
func ButtonEvents(bit uint8) bus.Topic {
	return bus.T("fw", "button", int(bit), "event", "+")
}
