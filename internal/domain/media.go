package domain

// MediaState is a participant's self-reported media toggles. The relay
// forwards it without interpreting it.
type MediaState struct {
	IsMuted         bool `json:"isMuted"`
	IsVideoOn       bool `json:"isVideoOn"`
	IsScreenSharing bool `json:"isScreenSharing"`
	IsHandRaised    bool `json:"isHandRaised"`
}
