package table

import "time"

// OphysSession is one row of the ophys session table,
// indexed by ophys session id.
type OphysSession struct {
	OphysSessionID     int64     `json:"ophys_session_id"`
	BehaviorSessionID  int64     `json:"behavior_session_id"`
	OphysExperimentIDs []int64   `json:"ophys_experiment_id"`
	DateOfAcquisition  time.Time `json:"date_of_acquisition"`
}

// Key returns the ophys session id.
func (s OphysSession) Key() int64 { return s.OphysSessionID }

// BehaviorSession is one row of the behavior-only session table,
// indexed by behavior session id.
type BehaviorSession struct {
	BehaviorSessionID int64     `json:"behavior_session_id"`
	ForagingID        int64     `json:"foraging_id"`
	DateOfAcquisition time.Time `json:"date_of_acquisition"`
	ReporterLine      string    `json:"reporter_line"`
	DriverLine        []string  `json:"driver_line"`
	FullGenotype      string    `json:"full_genotype"`
	CreLine           *string   `json:"cre_line"`
	SessionType       string    `json:"session_type"`
	MouseID           int64     `json:"mouse_id"`
}

// Key returns the behavior session id.
func (s BehaviorSession) Key() int64 { return s.BehaviorSessionID }

// OphysExperiment is one row of the experiment table,
// indexed by ophys experiment id.
type OphysExperiment struct {
	OphysExperimentID int64     `json:"ophys_experiment_id"`
	OphysSessionID    int64     `json:"ophys_session_id"`
	BehaviorSessionID int64     `json:"behavior_session_id"`
	DateOfAcquisition time.Time `json:"date_of_acquisition"`
	ImagingDepth      int64     `json:"imaging_depth"`
	TargetedStructure string    `json:"targeted_structure"`
}

// Key returns the ophys experiment id.
func (e OphysExperiment) Key() int64 { return e.OphysExperimentID }

// SessionByExperiment is one row of the derived session view,
// re-indexed by ophys experiment id. Every field other than the
// index is copied from the parent OphysSession row.
type SessionByExperiment struct {
	OphysExperimentID int64     `json:"ophys_experiment_id"`
	OphysSessionID    int64     `json:"ophys_session_id"`
	BehaviorSessionID int64     `json:"behavior_session_id"`
	DateOfAcquisition time.Time `json:"date_of_acquisition"`
}

// Key returns the ophys experiment id.
func (s SessionByExperiment) Key() int64 { return s.OphysExperimentID }

// StageParameters describes a behavior training stage configuration,
// keyed by foraging id in batch lookups.
type StageParameters struct {
	Stage                string  `json:"stage" mapstructure:"stage"`
	Stimulus             string  `json:"stimulus" mapstructure:"stimulus"`
	RewardVolume         float64 `json:"reward_volume" mapstructure:"reward_volume"`
	AutoRewardVolume     float64 `json:"auto_reward_volume" mapstructure:"auto_reward_volume"`
	FlashOmitProbability float64 `json:"flash_omit_probability" mapstructure:"flash_omit_probability"`
}
