package dto

// CascadeStepReport is the number of rows one cascade step removed or rewrote.
type CascadeStepReport struct {
	Step       string `json:"step"`
	Collection string `json:"collection"`
	Affected   int64  `json:"affected"`
}

// CascadeReport summarises a committed deletion cascade.
type CascadeReport struct {
	Entity string              `json:"entity"`
	Key    string              `json:"key"`
	Steps  []CascadeStepReport `json:"steps"`
}
