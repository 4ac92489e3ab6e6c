package analysis

import (
	"exampulse/domain/stats"
	"exampulse/domain/student"
)

// Demographics counts students, distinct education levels, genders and
// completed test preparation.
func Demographics(records []student.Record) stats.Demographics {
	d := stats.Demographics{Students: len(records)}
	levels := make(map[student.ParentalEducation]struct{})
	for _, r := range records {
		levels[r.ParentalEducation] = struct{}{}
		switch r.Gender {
		case student.GenderMale:
			d.Male++
		case student.GenderFemale:
			d.Female++
		}
		if r.TestPrep == student.TestPrepCompleted {
			d.TestPrepCompleted++
		}
	}
	d.EducationLevels = len(levels)
	return d
}
