package models

// Moderatable is an entity that moves through the approval lifecycle.
type Moderatable interface {
	PrimaryID() uint
	CurrentStatus() ModerationStatus
	SetStatus(status ModerationStatus)
	ReviewRecord() *Review
}

func (c *Company) PrimaryID() uint                   { return c.ID }
func (c *Company) CurrentStatus() ModerationStatus   { return c.Status }
func (c *Company) SetStatus(status ModerationStatus) { c.Status = status }
func (c *Company) ReviewRecord() *Review             { return &c.Review }

func (o *OMILOrganization) PrimaryID() uint                   { return o.ID }
func (o *OMILOrganization) CurrentStatus() ModerationStatus   { return o.Status }
func (o *OMILOrganization) SetStatus(status ModerationStatus) { o.Status = status }
func (o *OMILOrganization) ReviewRecord() *Review             { return &o.Review }

func (j *Job) PrimaryID() uint                   { return j.ID }
func (j *Job) CurrentStatus() ModerationStatus   { return j.Status }
func (j *Job) SetStatus(status ModerationStatus) { j.Status = status }
func (j *Job) ReviewRecord() *Review             { return &j.Review }
