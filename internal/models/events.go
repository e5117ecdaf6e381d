package models

import "time"

// InstanceEventInfo holds one upcoming scheduled event for an EC2 instance,
// such as a pending reboot or hardware retirement.
type InstanceEventInfo struct {
	InstanceID  string
	Code        string
	Description string
	NotBefore   *time.Time
	DaysUntil   int
}
