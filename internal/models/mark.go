package models

// ClassAverageID is the reserved identity clients use to address class averages.
const ClassAverageID = "CLASS_AVG"

// MarkKind separates per-student marks from class aggregates.
type MarkKind string

const (
	MarkIndividual MarkKind = "INDIVIDUAL"
	MarkAggregate  MarkKind = "AGGREGATE"
)

// Mark is a score for an exam. Aggregate marks carry no student id.
type Mark struct {
	ID        string   `db:"id" json:"id"`
	Kind      MarkKind `db:"kind" json:"kind"`
	StudentID string   `db:"student_id" json:"studentId"`
	Course    string   `db:"course" json:"course"`
	ExamType  string   `db:"exam_type" json:"examType"`
	Score     float64  `db:"score" json:"score"`
	MaxScore  float64  `db:"max_score" json:"maxScore"`
}

// MarksAnalytics compares a student's scores with class averages.
type MarksAnalytics struct {
	StudentScores map[string][]Mark             `json:"studentScores"`
	ClassAverages map[string]map[string]float64 `json:"classAverages"`
}
