package models

import "time"

// DrawingType enumerates supported document categories.
type DrawingType string

const (
	DrawingTypePlan          DrawingType = "Plan"
	DrawingTypeElevation     DrawingType = "Elevation"
	DrawingTypeSection       DrawingType = "Section"
	DrawingTypeDetail        DrawingType = "Detail"
	DrawingTypeSchedule      DrawingType = "Schedule"
	DrawingTypeSpecification DrawingType = "Specification"
)

// Valid reports whether the value is a member of the drawing type enum.
func (t DrawingType) Valid() bool {
	switch t {
	case DrawingTypePlan, DrawingTypeElevation, DrawingTypeSection,
		DrawingTypeDetail, DrawingTypeSchedule, DrawingTypeSpecification:
		return true
	}
	return false
}

// DrawingDiscipline enumerates engineering disciplines.
type DrawingDiscipline string

const (
	DisciplineArchitectural DrawingDiscipline = "Architectural"
	DisciplineStructural    DrawingDiscipline = "Structural"
	DisciplineMechanical    DrawingDiscipline = "Mechanical"
	DisciplineElectrical    DrawingDiscipline = "Electrical"
	DisciplinePlumbing      DrawingDiscipline = "Plumbing"
	DisciplineCivil         DrawingDiscipline = "Civil"
	DisciplineOther         DrawingDiscipline = "Other"
)

// Valid reports whether the value is a member of the discipline enum.
// Empty is allowed; the field is optional.
func (d DrawingDiscipline) Valid() bool {
	switch d {
	case "", DisciplineArchitectural, DisciplineStructural, DisciplineMechanical,
		DisciplineElectrical, DisciplinePlumbing, DisciplineCivil, DisciplineOther:
		return true
	}
	return false
}

// DrawingStatus mirrors the simplified drawing lifecycle. It is tracked but
// not independently state-machined; the parent project drives it.
type DrawingStatus string

const (
	DrawingActive   DrawingStatus = "Active"
	DrawingInactive DrawingStatus = "Inactive"
	DrawingReplaced DrawingStatus = "Replaced"
	DrawingObsolete DrawingStatus = "Obsolete"
)

// SheetSizes are the accepted sheet size labels.
var SheetSizes = []string{"A0", "A1", "A2", "A3", "A4", "B0", "B1", "B2", "B3", "B4", "C", "D", "E"}

// Drawing is an individual document attached to exactly one project.
// RevisionLabel is the author-supplied revision tag; Version is the
// engine-tracked counter preserving what-was-reviewed.
type Drawing struct {
	ID            string            `db:"id" json:"id"`
	ProjectID     string            `db:"project_id" json:"project_id"`
	DrawingNumber string            `db:"drawing_number" json:"drawing_number"`
	Title         string            `db:"title" json:"title"`
	Description   string            `db:"description" json:"description"`
	DrawingType   DrawingType       `db:"drawing_type" json:"drawing_type"`
	Discipline    DrawingDiscipline `db:"discipline" json:"discipline"`
	SheetSize     string            `db:"sheet_size" json:"sheet_size"`
	ScaleRatio    string            `db:"scale_ratio" json:"scale_ratio"`
	RevisionLabel string            `db:"revision_label" json:"revision_label"`
	Version       int               `db:"version" json:"version"`
	SortOrder     int               `db:"sort_order" json:"sort_order"`
	Status        DrawingStatus     `db:"status" json:"status"`
	AddedBy       string            `db:"added_by" json:"added_by"`
	DateAdded     time.Time         `db:"date_added" json:"date_added"`
}
