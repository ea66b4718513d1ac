package cloudevents

import "time"

// Source identifiers for events emitted by this service
const (
	SourceFleetService = "/fleet/fleet-service"
)

// FleetCloudEvent is a CloudEvents v1.0 compliant envelope for fleet domain
// events.
type FleetCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Fleet-specific extensions
	CorrelationID string `json:"fleetcorrelationid,omitempty"`
	WorkflowID    string `json:"fleetworkflowid,omitempty"`
	RobotID       string `json:"fleetrobotid,omitempty"`
}
